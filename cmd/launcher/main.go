// Launcher starts the whole agent fleet as child processes and tears
// everything down on the first exit or on SIGINT/SIGTERM.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/carebridge-project/carebridge-multi-agent/config"
	"github.com/carebridge-project/carebridge-multi-agent/logger"
)

type process struct {
	name string
	args []string
}

func main() {
	binDir := flag.String("bin", ".", "Directory holding the agent binaries")
	flag.Parse()

	log := logger.New()
	log.SetAgentName("launcher")

	env, err := config.LoadEnv()
	if err != nil {
		log.Error("config", err)
		os.Exit(1)
	}

	fleet := []process{
		{name: "ent", args: []string{"-port", fmt.Sprint(env.ENTAgentPort)}},
		{name: "gynec", args: []string{"-port", fmt.Sprint(env.GynecAgentPort)}},
		{name: "physician", args: []string{"-port", fmt.Sprint(env.PhysicianAgentPort)}},
		{name: "root", args: []string{"-port", fmt.Sprint(env.RootAgentPort)}},
		{name: "reportserver", args: []string{"-port", fmt.Sprint(env.ReportServerPort)}},
	}

	var wg sync.WaitGroup
	cmds := make([]*exec.Cmd, 0, len(fleet))
	done := make(chan string, len(fleet))

	for _, p := range fleet {
		cmd := exec.Command(filepath.Join(*binDir, p.name), p.args...)
		stdout, _ := cmd.StdoutPipe()
		stderr, _ := cmd.StderrPipe()
		if err := cmd.Start(); err != nil {
			log.Error("start "+p.name, err)
			stop(cmds)
			os.Exit(1)
		}
		log.WithField("process", p.name).Info("started")
		cmds = append(cmds, cmd)

		go relay(p.name, stdout)
		go relay(p.name, stderr)

		wg.Add(1)
		go func(name string, cmd *exec.Cmd) {
			defer wg.Done()
			_ = cmd.Wait()
			done <- name
		}(p.name, cmd)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case name := <-done:
		log.WithField("process", name).Warn("process exited, stopping fleet")
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("stopping fleet")
	}

	stop(cmds)
	wg.Wait()
}

func relay(name string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fmt.Printf("[%s] %s\n", name, scanner.Text())
	}
}

func stop(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
		}
	}
}
