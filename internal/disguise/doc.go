// Package disguise builds the browser-like header sets sent with every fetch
// attempt.
//
// A Disguise is picked per attempt: the User-Agent is chosen uniformly from a
// small catalog of current desktop browsers, the referer from a catalog of
// search engines, and the remaining headers come from a static template.
// Disguises are values; once generated they never change.
package disguise
