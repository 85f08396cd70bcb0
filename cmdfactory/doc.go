// Package cmdfactory
// Author: momentics <momentics@gmail.com>
//
// Implements the Command -> typed-message factory from spec.md §4.4: a
// mapping from wire.Command to a zero-argument constructor for the matching
// message schema type, built once and shared read-only thereafter
// (spec.md §5). Per the REDESIGN guidance in spec.md §9, this is a dense
// array indexed by the command's int32 value rather than the source's
// function-pointer-over-a-map, since wire.Command is kept contiguous.
package cmdfactory
