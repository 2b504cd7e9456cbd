package navigation

import (
	"fmt"

	"github.com/jonathan/architect/internal/types"
)

// State is the dashboard view state navigation operates on.
type State struct {
	ActiveProjectID string `json:"activeProjectId,omitempty"`
	View            View   `json:"view"`
	SidebarOpen     bool   `json:"sidebarOpen"`
	FilterCategory  string `json:"filterCategory,omitempty"`
	EInkMode        bool   `json:"eInkMode"`
}

// DefaultState is the state of a freshly opened dashboard.
func DefaultState() State {
	return State{View: ViewRoadmap, SidebarOpen: true}
}

// Outcome reports what a command did.
type Outcome struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

// Reduce applies cmd to s and returns the next state. It has no side effects.
// Commands that cannot be applied return s unchanged with Applied false.
func Reduce(s State, cmd Command, projects []types.Project, m Matcher) (State, Outcome) {
	if v, ok := showViews[cmd.Action]; ok {
		s.View = v
		return s, Outcome{Applied: true, Message: fmt.Sprintf("showing %s", v)}
	}

	switch cmd.Action {
	case SwitchProject:
		if cmd.Target == "" {
			return s, Outcome{Message: "no project named"}
		}
		id, _, ok := m.Best(cmd.Target, projects)
		if !ok {
			return s, Outcome{Message: fmt.Sprintf("no project matches %q", cmd.Target)}
		}
		s.ActiveProjectID = id
		s.View = ViewRoadmap
		return s, Outcome{Applied: true, Message: fmt.Sprintf("switched to %s", projectName(projects, id))}

	case FilterSteps:
		s.FilterCategory = cmd.Target
		if cmd.Target == "" {
			return s, Outcome{Applied: true, Message: "step filter cleared"}
		}
		return s, Outcome{Applied: true, Message: fmt.Sprintf("filtering steps by %s", cmd.Target)}

	case OpenSidebar:
		s.SidebarOpen = true
		return s, Outcome{Applied: true, Message: "sidebar opened"}

	case CloseSidebar:
		s.SidebarOpen = false
		return s, Outcome{Applied: true, Message: "sidebar closed"}

	case CreateNew:
		s.ActiveProjectID = ""
		s.View = ViewRoadmap
		return s, Outcome{Applied: true, Message: "ready for a new project"}

	case ToggleKindleMode:
		s.EInkMode = !s.EInkMode
		if s.EInkMode {
			return s, Outcome{Applied: true, Message: "e-ink mode on"}
		}
		return s, Outcome{Applied: true, Message: "e-ink mode off"}

	case AWSSync:
		return s, Outcome{Message: "sync is not available"}
	}

	return s, Outcome{Message: fmt.Sprintf("unknown action %q ignored", cmd.Action)}
}

func projectName(projects []types.Project, id string) string {
	for i := range projects {
		if projects[i].ID == id {
			return projects[i].Name
		}
	}
	return id
}
