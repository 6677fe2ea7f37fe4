// See handler.go, typed.go, and safe.go for the three tiers. Built-in codec
// strategies live in the codec subpackage.
package handler
