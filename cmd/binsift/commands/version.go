// cmd/binsift/commands/version.go
package commands

import (
	"io"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/binsift/binsift/pkg/version"
)

var versionTemplate = `Version:    {{.Version}}
Commit:     {{.Commit}}
Go version: {{.GoVersion}}
Built:      {{.BuildDate}}
OS/Arch:    {{.Os}}/{{.Arch}}
`

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the binsift version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(wr io.Writer) error {
	tmpl, err := template.New("version").Parse(versionTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(wr, struct {
		Version   string
		Commit    string
		GoVersion string
		BuildDate string
		Os        string
		Arch      string
	}{
		Version:   version.Version,
		Commit:    version.Commit,
		GoVersion: runtime.Version(),
		BuildDate: version.BuildDate,
		Os:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	})
}
