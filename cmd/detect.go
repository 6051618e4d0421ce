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
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/peredoc/internal/detector"
	"github.com/valpere/peredoc/internal/extractor"
)

var detectInput string

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the language of a document",
	Long: `Extract text from a document and report the detected language.

URLs and email addresses are stripped before detection so that latin-script
noise does not skew the result. Very short texts cannot be detected reliably
and are rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(detectInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		doc, err := extractor.Extract(data, filepath.Ext(detectInput))
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		det := detector.New()
		code, err := det.Detect(doc.Text)
		if err != nil {
			return err
		}

		name := code
		if tag, perr := language.Parse(code); perr == nil {
			name = display.English.Languages().Name(tag)
		}

		conf := det.Confidence(doc.Text, code)
		fmt.Printf("Language: %s (%s)\n", name, code)
		fmt.Printf("Confidence: %.2f\n", conf)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&detectInput, "input", "i", "", "Input document (required)")
	detectCmd.MarkFlagRequired("input")
}
