// Package engine defines the contract between the conversion controller and
// the external transcoding engine.
//
// The engine owns a private file namespace (its virtual filesystem) that the
// controller writes inputs into and reads outputs from. Running a command
// streams progress and log events on a channel owned by the caller.
package engine
