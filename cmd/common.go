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
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/valpere/peredoc/internal/backend"
)

// buildBackends constructs the fallback chain from backend names in rank
// order. Unknown names are skipped with a warning.
func buildBackends(names []string, timeout time.Duration, credentials, azureKey, azureRegion, libreURL, libreKey, mymemoryEmail string) ([]backend.Backend, error) {
	var list []backend.Backend

	for _, name := range names {
		switch name {
		case "google":
			list = append(list, backend.NewGoogleBackend(backend.Config{
				CredentialsFile: credentials,
				Timeout:         timeout,
			}))
		case "microsoft":
			list = append(list, backend.NewMicrosoftBackend(backend.Config{
				APIKey:  azureKey,
				Region:  azureRegion,
				Timeout: timeout,
			}))
		case "libre":
			list = append(list, backend.NewLibreBackend(backend.Config{
				BaseURL: libreURL,
				APIKey:  libreKey,
				Timeout: timeout,
			}))
		case "mymemory":
			list = append(list, backend.NewMyMemoryBackend(backend.Config{
				Email:   mymemoryEmail,
				Timeout: timeout,
			}))
		default:
			fmt.Fprintf(os.Stderr, "Unknown backend: %s, skipping\n", name)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid backends configured")
	}
	return list, nil
}

// newLogger builds the logging port handed to the orchestrator.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
