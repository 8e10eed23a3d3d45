package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"lightwave/lib/midiport"
	"lightwave/lib/show"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "Print the scene table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				path = cfg.Show.Scenes
			}
			tbl, err := loadTable(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScenes(tbl))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "Scene table to print instead of the configured one")
	return cmd
}

func renderScenes(tbl *show.Table) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"At", "Name", "Group", "Reset", "Color", "Maps", "Groups", "Viz"})
	for _, sc := range tbl.Sorted() {
		tw.AppendRow(table.Row{
			sc.Coord().String(),
			sc.Name,
			sc.Group,
			yesNo(sc.Reset),
			effects(sc.Color0, sc.Color1),
			effects(sc.Map0, sc.Map1),
			groups(sc),
			viz(sc.Viz),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignCenter},
	})

	var stages []string
	for i, name := range tbl.Stages.Focus {
		stages = append(stages, fmt.Sprintf("focus %d: %s", i, name))
	}
	for i, name := range tbl.Stages.Control {
		stages = append(stages, fmt.Sprintf("control %d: %s", i, name))
	}
	if len(stages) > 0 {
		tw.AppendFooter(table.Row{"", "stages", strings.Join(stages, ", ")})
	}
	return tw.Render()
}

func effects(a, b *show.Effect) string {
	str := func(e *show.Effect) string {
		if e == nil {
			return "-"
		}
		return e.String()
	}
	if a == nil && b == nil {
		return ""
	}
	return str(a) + "\n" + str(b)
}

func groups(sc *show.Scene) string {
	var parts []string
	add := func(name string, g *show.Group) {
		if g == nil {
			return
		}
		var modes []string
		if g.Color != nil {
			modes = append(modes, g.Color.String())
		}
		if g.Pattern != nil {
			modes = append(modes, g.Pattern.String())
		}
		if g.Ring != "" {
			modes = append(modes, "ring="+g.Ring)
		}
		parts = append(parts, name+": "+strings.Join(modes, " "))
	}
	add("pars", sc.Pars)
	add("beams", sc.Beams)
	add("bars", sc.Bars)
	add("strobes", sc.Strobes)
	add("spiders", sc.Spiders)
	if lz := sc.Laser; lz != nil {
		var modes []string
		if lz.Active != nil {
			modes = append(modes, "active="+yesNo(*lz.Active))
		}
		if lz.Pattern != "" {
			modes = append(modes, lz.Pattern)
		}
		if lz.Pos != nil {
			modes = append(modes, lz.Pos.String())
		}
		parts = append(parts, "laser: "+strings.Join(modes, " "))
	}
	return strings.Join(parts, "\n")
}

func viz(v *show.Viz) string {
	if v == nil {
		return ""
	}
	var parts []string
	if v.Pd != nil {
		parts = append(parts, "pd "+v.Pd.String())
	}
	if v.Beat != nil {
		parts = append(parts, "beat "+yesNo(*v.Beat))
	}
	if v.Alpha != nil {
		parts = append(parts, fmt.Sprintf("alpha %g", *v.Alpha))
	}
	if v.SendBeat {
		parts = append(parts, "sends beat")
	}
	return strings.Join(parts, "\n")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func newPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "ports",
		Short:       "List MIDI ports",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, outs := midiport.Names()
			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Direction", "Port"})
			for _, p := range ins {
				tw.AppendRow(table.Row{"in", p})
			}
			for _, p := range outs {
				tw.AppendRow(table.Row{"out", p})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}
