// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package termmux

import "os/exec"

// Windows has no POSIX process groups; creack/pty's ConPTY-backed child
// is killed directly, which is sufficient since winpty/ConPTY consoles
// terminate their attached console processes on handle close.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
