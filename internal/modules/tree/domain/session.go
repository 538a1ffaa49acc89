package domain

// FilterSession holds the state a local filter needs to undo itself. hidden
// and expanded are either both nil (no filter active) or both non-nil.
type FilterSession struct {
	keyword   string
	hidden    []*Node
	expanded  []*Node
	wasHidden map[*Node]struct{}
	wasOpen   map[*Node]struct{}
}

func NewFilterSession() *FilterSession {
	return &FilterSession{}
}

func (s *FilterSession) Active() bool {
	return s != nil && s.hidden != nil
}

func (s *FilterSession) Keyword() string {
	if s == nil {
		return ""
	}
	return s.keyword
}

func (s *FilterSession) HiddenCount() int { return len(s.hidden) }

func (s *FilterSession) ExpandedCount() int { return len(s.expanded) }

func (s *FilterSession) reset() {
	s.keyword = ""
	s.hidden = nil
	s.expanded = nil
	s.wasHidden = nil
	s.wasOpen = nil
}
