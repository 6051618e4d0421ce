/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/peredoc/internal/backend"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List configured languages and per-backend support",
	RunE: func(cmd *cobra.Command, args []string) error {
		codes := viper.GetStringSlice("languages")

		backendList, err := buildBackends(viper.GetStringSlice("backend_order"),
			backend.DefaultTimeout, "", "", "", "", "", "")
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprint(w, "CODE\tNAME")
		for _, b := range backendList {
			fmt.Fprintf(w, "\t%s", b.Name())
		}
		fmt.Fprintln(w)

		for _, code := range codes {
			name := code
			if tag, perr := language.Parse(code); perr == nil {
				name = display.English.Languages().Name(tag)
			}
			fmt.Fprintf(w, "%s\t%s", code, name)
			for _, b := range backendList {
				mark := "-"
				if slices.Contains(b.Languages(), code) {
					mark = "yes"
				}
				fmt.Fprintf(w, "\t%s", mark)
			}
			fmt.Fprintln(w)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
