// Package file provides the "filename" transport: plain files, FIFOs, and
// character devices read or appended to line by line.
package file
