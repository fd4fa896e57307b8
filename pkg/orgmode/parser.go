package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Heading is a TODO or DONE entry from an org file.
type Heading struct {
	ID        string
	Title     string
	Priority  string
	Tags      []string
	Done      bool
	Scheduled time.Time
	Deadline  time.Time
	Notes     []string
	Source    string
}

var (
	headingRegex   = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Za-z])\])?\s*(.*?)(?:\s+(:[\w@:]+:))?\s*$`)
	anyHeading     = regexp.MustCompile(`^\*+\s`)
	timestampRegex = regexp.MustCompile(`(SCHEDULED|DEADLINE):\s*<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{1,2}:\d{2}))?[^>]*>`)
	idRegex        = regexp.MustCompile(`^:ID:\s+(\S+)`)
)

// parseFile parses an Org-mode file and returns its headings.
func parseFile(filePath string) ([]Heading, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, filePath)
}

// ParseFiles parses multiple Org-mode files and returns their headings.
func ParseFiles(filePaths []string) ([]Heading, error) {
	var all []Heading
	for _, filePath := range filePaths {
		headings, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, headings...)
	}
	return all, nil
}

// Parse reads TODO/DONE headings along with their planning line, property
// drawer and body text.
func Parse(r io.Reader, source string) ([]Heading, error) {
	logging.Component("orgmode").Debugf("Event ID: ORG_PARSE, Description: parsing %s", source)

	scanner := bufio.NewScanner(r)
	var headings []Heading
	var current *Heading
	inDrawer := false

	flush := func() {
		if current != nil && current.Title != "" {
			headings = append(headings, *current)
		}
		current = nil
		inDrawer = false
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if anyHeading.MatchString(line) {
			flush()
			matches := headingRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &Heading{
				Source:   source,
				Done:     matches[1] == "DONE",
				Priority: strings.ToUpper(matches[2]),
				Title:    strings.TrimSpace(matches[3]),
			}
			if matches[4] != "" {
				current.Tags = strings.Split(strings.Trim(matches[4], ":"), ":")
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case line == ":PROPERTIES:":
			inDrawer = true
		case line == ":END:":
			inDrawer = false
		case inDrawer:
			if m := idRegex.FindStringSubmatch(line); m != nil {
				current.ID = m[1]
			}
		case timestampRegex.MatchString(line):
			for _, m := range timestampRegex.FindAllStringSubmatch(line, -1) {
				ts, ok := parseTimestamp(m[2], m[3])
				if !ok {
					continue
				}
				if m[1] == "SCHEDULED" {
					current.Scheduled = ts
				} else {
					current.Deadline = ts
				}
			}
		case line != "":
			current.Notes = append(current.Notes, strings.TrimLeft(line, "-+ "))
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return headings, nil
}

func parseTimestamp(date, clock string) (time.Time, bool) {
	if clock == "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		return t, err == nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	return t, err == nil
}

// FilterTasks keeps the headings carrying the given tag.
func FilterTasks(headings []Heading, tag string) []Heading {
	var filtered []Heading
	for _, h := range headings {
		for _, t := range h.Tags {
			if t == tag {
				filtered = append(filtered, h)
				break
			}
		}
	}
	return filtered
}

// ToInput converts a heading into a board task. The first two tags name the
// department and team, with underscores standing in for spaces. Headings
// without a SCHEDULED or DEADLINE date are skipped.
func ToInput(h Heading) (model.TaskInput, bool) {
	date := h.Scheduled
	if date.IsZero() {
		date = h.Deadline
	}
	if date.IsZero() || h.Title == "" {
		return model.TaskInput{}, false
	}

	in := model.TaskInput{
		Title:       h.Title,
		Description: strings.Join(h.Notes, "\n"),
		Date:        date,
		Priority:    model.PriorityLow,
	}
	if in.Description == "" {
		in.Description = h.Title
	}
	if p, ok := model.ParsePriority(h.Priority); ok {
		in.Priority = p
	}
	if len(h.Tags) > 0 {
		in.Department = strings.ReplaceAll(h.Tags[0], "_", " ")
	}
	if len(h.Tags) > 1 {
		in.Team = strings.ReplaceAll(h.Tags[1], "_", " ")
	}
	if !h.Deadline.IsZero() {
		deadline := h.Deadline
		in.Deadline = &deadline
	}
	return in, true
}
