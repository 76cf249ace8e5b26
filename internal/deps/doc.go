// Package deps checks that the external binaries adconvert drives are on
// PATH and, optionally, that they run.
package deps
