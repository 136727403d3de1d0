package runtime

// NativeObject is one object exported by a host-implemented library.
type NativeObject struct {
	Functions map[string]NativeFunc
	Constants map[string]Value
}

// NativeModule maps exported object names to their contents. Importing the
// module binds one Object per entry.
type NativeModule map[string]NativeObject
