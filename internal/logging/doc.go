// Package logging writes efl's JSON log and reads it back.
//
// Records go to <game dir>/.efl/logs/efl.log so a failed launch can be
// looked into after the console window has closed. Stdout belongs to the
// launcher messages and is never logged to; --debug mirrors records to
// stderr. The viewer behind 'efl logs' tails and follows the rotated set.
package logging
