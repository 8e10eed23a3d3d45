package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	lwcolor "lightwave/lib/color"
	"lightwave/lib/logging"
	"lightwave/lib/streamdeck"
)

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// rainbow fills every key with its own hue and labels it.
func rainbow(dev *streamdeck.Device) {
	m := dev.Model()
	for key := range m.Keys {
		r, g, b := lwcolor.HSV(float64(key)/float64(m.Keys), 1, 0.8).Bytes()
		bg := color.RGBA{r, g, b, 255}
		label := fmt.Sprintf("Key %d\nrow %d", key, key/m.KeyCols)
		if err := dev.SetKeyText(key, bg, color.White, label); err != nil {
			fmt.Fprintf(os.Stderr, "key %d: %v\n", key, err)
		}
	}
}

// demo cycles the status panel through the named colors.
func demo(ctx context.Context, dev *streamdeck.Device, log *slog.Logger) {
	panel := streamdeck.NewPanel(dev, log)
	go panel.Run(ctx)

	names := lwcolor.Names()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for i := 0; ; i++ {
		c0, _ := lwcolor.Named(names[i%len(names)])
		c1, _ := lwcolor.Named(names[(i+1)%len(names)])
		panel.Update(streamdeck.Status{
			Color0: c0,
			Color1: c1,
			BPM:    120 + float64(i%8),
			Clock:  "static",
			Alpha:  float64(i%5) / 4,
			Off:    i%10 == 9,
			Scene:  names[i%len(names)],
		})
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func main() {
	brightness := flag.Int("brightness", 80, "Display brightness percent")
	status := flag.Bool("status", false, "Cycle the status panel instead of labelling keys")
	flag.Parse()

	dev, err := streamdeck.Open()
	if err != nil {
		fail(err)
	}
	defer dev.Close()

	fmt.Printf("Connected to: %s %s (serial: %s)\n", dev.Product(), dev.Model().Name, dev.SerialNumber())

	if err := dev.SetBrightness(byte(*brightness)); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *status {
		log, err := logging.New(logging.Options{Level: "debug", Format: "console"})
		if err != nil {
			fail(err)
		}
		demo(ctx, dev, log)
	} else {
		rainbow(dev)
		<-ctx.Done()
	}
	fmt.Println()
	dev.ClearAllKeys()
}
