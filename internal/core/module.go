package core

// ModuleID is a dotted identifier such as "tool.calculator" or
// "memory.sqlite". The segment before the first dot is the namespace.
type ModuleID string

// Namespace returns the part of the ID before the first dot.
func (id ModuleID) Namespace() string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return string(id[:i])
		}
	}
	return string(id)
}

// Name returns the part of the ID after the first dot.
func (id ModuleID) Name() string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return string(id[i+1:])
		}
	}
	return ""
}

// ModuleInfo describes a compiled-in module.
type ModuleInfo struct {
	ID  ModuleID
	New func() Module
}

// Module is the minimal interface every module implements. Lifecycle
// behaviour is opted into through the interfaces in lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}
