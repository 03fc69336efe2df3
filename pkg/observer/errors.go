package observer

import "errors"

// ErrNotWritable is returned when assigning to a read-only data property.
var ErrNotWritable = errors.New("observer: property is not writable")

// ErrNotExtensible is returned when adding a key to an object that no longer
// accepts new properties (PreventExtensions, Seal or Freeze).
var ErrNotExtensible = errors.New("observer: object is not extensible")

// ErrNotConfigurable is returned when deleting or redefining a
// non-configurable property.
var ErrNotConfigurable = errors.New("observer: property is not configurable")
