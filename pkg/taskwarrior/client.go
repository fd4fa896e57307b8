package taskwarrior

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// GetTasks runs `task <filter> export` and decodes the result.
func (c *Client) GetTasks(filter []string) ([]Task, error) {
	args := append(filter, "export", "rc.hooks=0")
	cmd := exec.Command("task", args...)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(output, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
	}
	return tasks, nil
}

// ParseTask parses a single task JSON from an io.Reader
func (c *Client) ParseTask(r io.Reader) (Task, error) {
	var task Task
	if err := json.NewDecoder(r).Decode(&task); err != nil {
		return Task{}, fmt.Errorf("failed to decode task json: %w", err)
	}
	return task, nil
}

// ParseTasks reads either a JSON array (`task export`) or a stream of JSON
// objects, one per line.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(br)
	if first == '[' {
		var tasks []Task
		if err := decoder.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task array: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			br.ReadByte()
		default:
			return b[0], nil
		}
	}
}

// ToInput converts a Taskwarrior task into a board task. A project of the
// form "Department.Team" fills both fields. Deleted tasks and tasks with no
// usable date are skipped (ok=false).
func ToInput(t Task) (in model.TaskInput, ok bool) {
	if t.Status == DELETED || strings.TrimSpace(t.Description) == "" {
		return model.TaskInput{}, false
	}

	var date time.Time
	switch {
	case t.Scheduled.set():
		date = t.Scheduled.Time
	case t.Due.set():
		date = t.Due.Time
	case t.Entry.set():
		date = t.Entry.Time
	default:
		return model.TaskInput{}, false
	}

	in = model.TaskInput{
		Title:        t.Description,
		Description:  t.Description,
		Date:         date,
		Priority:     model.PriorityLow,
		Dependencies: []string(t.Depends),
	}
	if p, ok := model.ParsePriority(t.Priority); ok {
		in.Priority = p
	}
	if dept, team, found := strings.Cut(t.Project, "."); found {
		in.Department, in.Team = dept, team
	} else {
		in.Department = t.Project
	}
	if t.Due.set() {
		due := t.Due.Time
		in.Deadline = &due
	}
	for _, ann := range t.Annotations {
		in.Instructions = append(in.Instructions, ann.Description)
	}
	if len(t.Tags) > 0 {
		in.Description = fmt.Sprintf("%s (#%s)", t.Description, strings.Join(t.Tags, " #"))
	}
	return in, true
}
