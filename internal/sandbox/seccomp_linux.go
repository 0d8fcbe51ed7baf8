//go:build linux

package sandbox

import (
	"fmt"
	"unsafe"

	"github.com/elastic/go-seccomp-bpf/arch"
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/skeld-sh/skeld/internal/errors"
)

// Offsets into the kernel's seccomp_data on little-endian hosts. arg1Low
// addresses the low 32 bits of the second syscall argument.
const (
	seccompDataNr      = 0
	seccompDataArch    = 4
	seccompDataArg1Low = 24
)

// terminalGuardProgram builds the filter applied to foreground sandboxes:
// everything is allowed except the TIOCSTI and TIOCLINUX ioctls, which
// trap. Those two requests inject input into the controlling terminal, a
// sandboxed process could use them to type into the invoking shell. The
// leading architecture gate keeps the fixed syscall number from being
// reinterpreted under a foreign syscall convention.
func terminalGuardProgram(info *arch.Info) ([]bpf.Instruction, error) {
	ioctlNR, err := ioctlNumber(info)
	if err != nil {
		return nil, err
	}

	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: seccompDataArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(info.ID), SkipTrue: 1},
		bpf.RetConstant{Val: unix.SECCOMP_RET_KILL_PROCESS},
		bpf.LoadAbsolute{Off: seccompDataNr, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: ioctlNR, SkipFalse: 4},
		bpf.LoadAbsolute{Off: seccompDataArg1Low, Size: 4},
		bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: 0xffffffff},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(unix.TIOCSTI), SkipTrue: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(unix.TIOCLINUX), SkipTrue: 1},
		bpf.RetConstant{Val: unix.SECCOMP_RET_ALLOW},
		bpf.RetConstant{Val: unix.SECCOMP_RET_TRAP},
	}, nil
}

func ioctlNumber(info *arch.Info) (uint32, error) {
	for nr, name := range info.SyscallNumbers {
		if name == "ioctl" {
			return uint32(nr), nil
		}
	}
	return 0, fmt.Errorf("no ioctl syscall number known for %s", info.Name)
}

// installTerminalGuard loads the filter for every thread of the current
// process, so the sandboxed child inherits it no matter which runtime
// thread performs the spawn.
func installTerminalGuard() error {
	info, err := arch.GetInfo("")
	if err != nil {
		return errors.SeccompFailed(err)
	}

	program, err := terminalGuardProgram(info)
	if err != nil {
		return errors.SeccompFailed(err)
	}

	raw, err := bpf.Assemble(program)
	if err != nil {
		return errors.SeccompFailed(err)
	}

	filter := make([]unix.SockFilter, len(raw))
	for i, ins := range raw {
		filter[i] = unix.SockFilter{
			Code: ins.Op,
			Jt:   ins.Jt,
			Jf:   ins.Jf,
			K:    ins.K,
		}
	}
	prog := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return errors.SeccompFailed(fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", err))
	}
	if _, _, errno := unix.Syscall(unix.SYS_SECCOMP,
		uintptr(unix.SECCOMP_SET_MODE_FILTER),
		uintptr(unix.SECCOMP_FILTER_FLAG_TSYNC),
		uintptr(unsafe.Pointer(&prog))); errno != 0 {
		return errors.SeccompFailed(fmt.Errorf("seccomp(SECCOMP_SET_MODE_FILTER): %w", errno))
	}

	return nil
}
