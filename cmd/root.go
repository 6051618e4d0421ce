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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "peredoc",
	Short: "Document translation pipeline",
	Long: `peredoc extracts text from documents (PDF, DOCX, TXT, Markdown),
detects the source language, splits the text into sentence-aligned chunks,
translates each chunk through a ranked chain of backends with automatic
fallback, and packages the result as text or PDF.

Backends (fallback order): Google Translate, Azure Translator,
LibreTranslate, MyMemory.

Use "peredoc translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.peredoc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".peredoc")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("PEREDOC")
	viper.AutomaticEnv()

	viper.SetDefault("max_chunk_size", 5000)
	viper.SetDefault("backend_order", []string{"google", "microsoft", "libre", "mymemory"})
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("max_retries", 1)
	viper.SetDefault("languages", []string{"en", "hi", "mr", "sa"})

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
