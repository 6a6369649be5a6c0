// Package backend is the registry of GPU device backends.
//
// Backend packages register a Factory from an init function. Applications
// import the backend package for its side effect and open a device by name:
//
//	import _ "github.com/gogpu/g3d/backend/native"
//
//	dev, err := backend.Open("noop")
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
// OpenDefault tries "vulkan" first, then "noop", then any other registered
// backend.
package backend
