package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reelmark/reelmark/filesystem"
	"github.com/reelmark/reelmark/inline"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/network"
	"github.com/reelmark/reelmark/probe"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	classifyCmd.Flags().BoolP("probe", "p", false, "Check that native sources are reachable")
	classifyCmd.Flags().StringP("filter", "f", "", "Only report inputs matching the filter")
	classifyCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	lo.Must0(classifyCmd.RegisterFlagCompletionFunc("filter", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "playable", "native", "embedded", "unsupported"}, cobra.ShellCompDirectiveNoFileComp
	}))
}

var classifyCmd = &cobra.Command{
	Use:   "classify [url or file]...",
	Short: "Classify links and files without playing them",
	Long: `Classify links and files and report which backend would play them.

Filters:
  all - every input
  playable - inputs some backend can attempt
  native - inputs played by mpv
  embedded - inputs played in the embedded browser
  unsupported - inputs nothing can play
  kind:[kind] - inputs of one source kind
  @[text]@ - inputs whose platform label contains text`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			writer io.Writer = os.Stdout
			err    error
		)

		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		}

		options := &inline.Options{
			Out:    writer,
			Inputs: args,
			Json:   lo.Must(cmd.Flags().GetBool("json")),
		}

		if filter := lo.Must(cmd.Flags().GetString("filter")); filter != "" {
			fn, err := inline.ParseFilter(filter)
			handleErr(err)
			options.Filter = mo.Some(fn)
		}

		if lo.Must(cmd.Flags().GetBool("probe")) {
			client := network.NewClient(viper.GetBool(key.ProbeTLSFingerprint))
			options.Prober = mo.Some[inline.Prober](probe.New(client))
		}

		handleErr(inline.Run(context.Background(), options))
	},
}

func init() {
	classifyCmd.AddCommand(classifySchemaCmd)
}

var classifySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the classify output",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "output", "result", "descriptor":
				return "reelmark." + name
			}
			return name
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&inline.Output{})))
	},
}
