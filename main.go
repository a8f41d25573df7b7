// SPDX-License-Identifier: MPL-2.0

// aifm-launcher bootstraps and starts the AI Fund Master application:
// it provisions a Python virtual environment with the bundled uv,
// installs the dependency manifest, prepares the local Ollama service,
// and launches the GUI inside the environment.
package main

import cmd "github.com/lihrs/aifm-launcher/cmd/aifm-launcher"

func main() {
	cmd.Execute()
}
