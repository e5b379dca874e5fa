package include

// Stack holds the absolute paths of the files currently open in one
// preprocessing run, most recently opened last. The root file is pushed by
// NewStack and is never popped, so Top always names the file whose
// directory anchors the next local include.
type Stack struct {
	paths []string
}

// NewStack returns a stack seeded with the root file's path.
func NewStack(root string) *Stack {
	return &Stack{paths: []string{root}}
}

// Push records path as the current file.
func (s *Stack) Push(path string) {
	s.paths = append(s.paths, path)
}

// Pop removes and returns the current file. It refuses to remove the root.
func (s *Stack) Pop() (string, bool) {
	if len(s.paths) <= 1 {
		return "", false
	}
	top := s.paths[len(s.paths)-1]
	s.paths = s.paths[:len(s.paths)-1]
	return top, true
}

// Top returns the current file.
func (s *Stack) Top() string {
	return s.paths[len(s.paths)-1]
}

// Root returns the root file.
func (s *Stack) Root() string {
	return s.paths[0]
}

// Len returns the number of open files, root included.
func (s *Stack) Len() int {
	return len(s.paths)
}

// Paths returns a copy of the stack, root first.
func (s *Stack) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Contains reports whether path is currently open.
func (s *Stack) Contains(path string) bool {
	for _, p := range s.paths {
		if p == path {
			return true
		}
	}
	return false
}
