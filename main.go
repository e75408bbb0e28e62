// SPDX-License-Identifier: MPL-2.0

package main

import cmd "vfsinfo-cli/cmd/vfsinfo"

func main() {
	cmd.Execute()
}
