package inference

import (
	"errors"
	"fmt"
	"strings"
)

// Model selects one of the classifiers bound at startup.
type Model int

const (
	RandomForest Model = iota
	SVM
	VotingEnsemble
)

var ErrUnknownModel = errors.New("unknown model")

// Models lists every selectable model in menu order.
func Models() []Model {
	return []Model{RandomForest, SVM, VotingEnsemble}
}

// String returns the display name shown in the model menu.
func (m Model) String() string {
	switch m {
	case RandomForest:
		return "Random Forest"
	case SVM:
		return "SVM"
	case VotingEnsemble:
		return "Voting Ensemble"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// Slug returns the identifier used in config keys and API payloads.
func (m Model) Slug() string {
	switch m {
	case RandomForest:
		return "random_forest"
	case SVM:
		return "svm"
	case VotingEnsemble:
		return "voting_ensemble"
	default:
		return ""
	}
}

// ParseModel accepts a display name or slug, case-insensitively.
func ParseModel(s string) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Models() {
		if key == m.Slug() || key == strings.ToLower(m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

func (m Model) MarshalText() ([]byte, error) {
	if m.Slug() == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, int(m))
	}
	return []byte(m.Slug()), nil
}

func (m *Model) UnmarshalText(text []byte) error {
	parsed, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
