// Package classifier maps a URL to the site category that decides which
// acquisition strategy and which extraction patterns apply to it.
//
// Classification is a case-insensitive substring match of the whole URL
// against an ordered keyword table. It does no I/O and never fails: a URL
// that matches nothing, or is not a URL at all, is Generic.
package classifier
