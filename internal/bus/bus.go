package bus

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "voxnote.pid"
const ProtoVer = "0.2"

// One-byte commands. Start and submit take an optional title on the rest of
// the line.
const (
	CmdToggle  byte = 't'
	CmdStart   byte = 'r'
	CmdStop    byte = 'x'
	CmdSubmit  byte = 'u'
	CmdStatus  byte = 's'
	CmdHistory byte = 'h'
	CmdReset   byte = 'z'
	CmdVersion byte = 'v'
	CmdQuit    byte = 'q'
)

const responseTimeout = 5 * time.Second

func runtimeDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "voxnote"), nil
}

// ~/.cache/voxnote/control.sock
func getSockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

// ~/.cache/voxnote/voxnote.pid
func getPidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

func SockPath() (string, error) {
	return getSockPath()
}

type socketManager struct {
	path string
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.Dial("unix", s.path)
}

func defaultSocket() (*socketManager, error) {
	sp, err := getSockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: sp}, nil
}

func Listen() (net.Listener, error) {
	sm, err := defaultSocket()
	if err != nil {
		return nil, err
	}
	return sm.listen()
}

func Dial() (net.Conn, error) {
	sm, err := defaultSocket()
	if err != nil {
		return nil, err
	}
	return sm.dial()
}

// SendCommand sends one command line and returns everything the daemon
// writes before closing the connection.
func SendCommand(cmd byte, arg string) (string, error) {
	c, err := Dial()
	if err != nil {
		return "", err
	}
	return exchange(c, cmd, arg)
}

func exchange(c net.Conn, cmd byte, arg string) (string, error) {
	defer c.Close()

	arg = strings.ReplaceAll(arg, "\n", " ")
	if _, err := fmt.Fprintf(c, "%c%s\n", cmd, arg); err != nil {
		return "", err
	}

	_ = c.SetReadDeadline(time.Now().Add(responseTimeout))
	resp, err := io.ReadAll(bufio.NewReader(c))
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// ParseCommand splits a request line into its command byte and argument.
func ParseCommand(line string) (byte, string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return 0, "", false
	}
	return line[0], strings.TrimSpace(line[1:]), true
}

type pidManager struct {
	path string
}

func defaultPidManager() (*pidManager, error) {
	pp, err := getPidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: pp}, nil
}

// checkExisting fails if a live daemon owns the PID file. Stale or
// unreadable PID files are removed.
func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		_ = os.Remove(p.path)
		return nil
	}

	if !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

func CheckExistingDaemon() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.checkExisting()
}

func CreatePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.create()
}

func RemovePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.remove()
}
