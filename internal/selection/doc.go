// Package selection validates and holds the source video chosen by the user
// and derives the download name of the converted result.
package selection
