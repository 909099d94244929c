package reader

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"syscall"

	"badgectl/credential"
)

// Pipe implements Scanner on top of a named pipe so a bench setup or a test
// rig can present credentials without reader hardware.
//
// Command format, one per line:
//
//	tap <uid>      - present and remove a card (alias: rfid, tag)
//	present <uid>  - place a card on the antenna and leave it there
//	remove         - take the card away
//
// <uid> is hex, either "04 A3 FF 1B" or "04A3FF1B".
type Pipe struct {
	path   string
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	taps     []credential.UID
	held     credential.UID
	gapAfter bool // report an empty field once after a tap
}

type pipeCommand struct {
	verb string
	uid  credential.UID
}

// NewPipe creates the named pipe at path and starts listening on it.
func NewPipe(path string) (*Pipe, error) {
	if path == "" {
		return nil, fmt.Errorf("pipe reader needs a path")
	}

	// Remove existing pipe if it exists
	os.Remove(path)

	if err := syscall.Mkfifo(path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", path, err)
	}

	p := newPipe(path)
	go p.listen()
	return p, nil
}

func newPipe(path string) *Pipe {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipe{path: path, ctx: ctx, cancel: cancel}
}

func (p *Pipe) listen() {
	log.Printf("Tag pipe listening on %s", p.path)

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		// Blocks until a writer connects
		file, err := os.OpenFile(p.path, os.O_RDONLY, 0)
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			log.Printf("Tag pipe open error: %v", err)
			continue
		}

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if p.ctx.Err() != nil {
				file.Close()
				return
			}
			p.handleLine(scanner.Text())
		}

		file.Close()
		// Writer closed the pipe, loop back to wait for next writer
	}
}

func (p *Pipe) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	cmd, err := parsePipeLine(line)
	if err != nil {
		log.Printf("Tag pipe parse error: %v", err)
		return
	}
	p.apply(cmd)
}

// parsePipeLine parses a command line into a pipeCommand.
func parsePipeLine(line string) (pipeCommand, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return pipeCommand{}, fmt.Errorf("empty command")
	}

	verb := strings.ToLower(parts[0])
	switch verb {
	case "tap", "rfid", "tag", "present":
		if len(parts) < 2 {
			return pipeCommand{}, fmt.Errorf("%s requires a tag ID", verb)
		}
		uid, err := credential.Parse(strings.Join(parts[1:], " "))
		if err != nil {
			return pipeCommand{}, fmt.Errorf("invalid tag ID %q: %w", strings.Join(parts[1:], " "), err)
		}
		if verb != "present" {
			verb = "tap"
		}
		return pipeCommand{verb: verb, uid: uid}, nil

	case "remove":
		return pipeCommand{verb: verb}, nil

	default:
		return pipeCommand{}, fmt.Errorf("unknown command: %s", verb)
	}
}

func (p *Pipe) apply(cmd pipeCommand) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch cmd.verb {
	case "tap":
		p.taps = append(p.taps, cmd.uid)
	case "present":
		p.held = cmd.uid
	case "remove":
		p.held = nil
	}
}

// Poll implements Scanner.Poll.
func (p *Pipe) Poll(ctx context.Context) (credential.UID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.held != nil {
		return p.held, nil
	}
	if p.gapAfter {
		p.gapAfter = false
		return nil, nil
	}
	if len(p.taps) > 0 {
		uid := p.taps[0]
		p.taps = p.taps[1:]
		p.gapAfter = true
		return uid, nil
	}
	return nil, nil
}

// Halt implements Scanner.Halt. Taps queued while the last card was being
// handled are discarded; a card left on the antenna stays.
func (p *Pipe) Halt() error {
	p.mu.Lock()
	p.taps = nil
	p.mu.Unlock()
	return nil
}

// Close stops the listener and removes the pipe.
func (p *Pipe) Close() error {
	p.cancel()
	return os.Remove(p.path)
}
