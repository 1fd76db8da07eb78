// Package persistence stores kernel models in a blob store.
//
// A stored model is the line-oriented record stream written by
// (*kernelscore.KernelModel).Save, optionally wrapped in a zstd or LZ4 frame.
// Open detects the compression from the frame magic, so readers need no
// out-of-band format information. Plain blobs stay readable by
// kernelscore.Read directly.
//
// Manager pairs a stored snapshot with an update journal (package wal):
// Snapshot saves the model and truncates the journal, Recover loads the last
// snapshot and replays whatever was journaled after it.
package persistence
