// Package scope implements the chain of lexical scope frames shared by the
// semantic check and the interpreter. A frame maps variable names to their
// status and owns at most one attached child, so the chain is always a
// simple path from the root block down to the innermost active block.
package scope

import "Core/errors"

// status tracks one variable. The checker only cares whether the variable
// has been assigned somewhere; the interpreter also needs the value.
type status struct {
	set   bool
	value int64
}

// Frame is one level of lexical scope.
type Frame struct {
	vars  map[string]status
	child *Frame
}

// NewFrame returns an empty frame with nothing attached below it.
func NewFrame() *Frame {
	return &Frame{vars: make(map[string]status)}
}

// Declare inserts name into f as declared-but-unset. Declaring a name twice
// in the same frame is an error; shadowing an outer frame is not.
func (f *Frame) Declare(name string) error {
	if _, ok := f.vars[name]; ok {
		return errors.New(errors.DuplicateDeclaration, "variable %s declared twice in the same scope", name)
	}
	f.vars[name] = status{}
	return nil
}

// Resolve returns the innermost attached frame that declares name,
// searching from the deepest frame below f back up to f itself.
// It returns nil when no frame on the chain declares name.
func (f *Frame) Resolve(name string) *Frame {
	if f.child != nil {
		if owner := f.child.Resolve(name); owner != nil {
			return owner
		}
	}
	if _, ok := f.vars[name]; ok {
		return f
	}
	return nil
}

// Read returns the value of name, resolving from f downwards.
func (f *Frame) Read(name string) (int64, error) {
	owner := f.Resolve(name)
	if owner == nil {
		return 0, errors.New(errors.UndeclaredVariable, "variable %s is not declared in any scope", name)
	}
	st := owner.vars[name]
	if !st.set {
		return 0, errors.New(errors.UninitializedVariable, "variable %s read before it is assigned", name)
	}
	return st.value, nil
}

// Write stores value for name in its owning frame, resolving from f
// downwards, and marks the variable set.
func (f *Frame) Write(name string, value int64) error {
	owner := f.Resolve(name)
	if owner == nil {
		return errors.New(errors.UndeclaredVariable, "variable %s is not declared in any scope", name)
	}
	owner.vars[name] = status{set: true, value: value}
	return nil
}

// IsSet reports whether name has been assigned in f itself. Unlike Read it
// does not walk the chain; callers hold the owning frame from Resolve.
func (f *Frame) IsSet(name string) bool {
	return f.vars[name].set
}

// AttachChild links child below f for the duration of a block.
func (f *Frame) AttachChild(child *Frame) {
	f.child = child
}

// DetachChild unlinks the frame below f when its block exits.
func (f *Frame) DetachChild() {
	f.child = nil
}
