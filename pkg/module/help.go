// pkg/module/help.go
package module

import (
	"fmt"
	"strings"
)

// helpColumn is the column the value label pads out to, keeping option
// descriptions aligned across all modules.
const helpColumn = 32

// Help renders usage text for every registered module that contributes
// command-line options: the module title, then one line per visible option
// as `-s, --long=<type>  description`. Options without a long flag are
// omitted.
func (m *Manager) Help() string {
	var sb strings.Builder
	sb.WriteString("\n")

	for _, desc := range m.registry.Descriptors() {
		if len(desc.CLI) == 0 {
			continue
		}
		visible := false
		for _, opt := range desc.CLI {
			if opt.Long != "" {
				visible = true
				break
			}
		}
		if !visible {
			continue
		}

		fmt.Fprintf(&sb, "\n%s Options:\n", desc.Title)
		for _, opt := range desc.CLI {
			if opt.Long == "" {
				continue
			}
			longOpt := "--" + opt.Long
			optarg := ""
			if opt.Kind != KindNone {
				optarg = fmt.Sprintf("=<%s>", opt.typeLabel())
			}
			shortOpt := "   "
			if opt.Short != "" {
				shortOpt = "-" + opt.Short + ","
			}
			pad := helpColumn - len(longOpt)
			if pad < 0 {
				pad = 0
			}
			fmt.Fprintf(&sb, "    %s %s%-*s%s\n", shortOpt, longOpt, pad, optarg, opt.Description)
		}
	}

	sb.WriteString("\n")
	return sb.String()
}
