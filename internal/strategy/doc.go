// Package strategy implements the acquisition strategies: the
// category-specific ways of turning a URL into a RawDocument with the
// highest-signal text of the page.
//
// Every category has an HTMLStrategy that differs in timeout, text budget
// and the CSS selectors it trusts. Real-estate URLs can additionally be
// served by ZillowAPIStrategy, which queries a property API and returns an
// authoritative graph fragment instead of free text.
//
// The Registry maps categories to strategies. The fetch engine looks the
// strategy up once per URL and never picks one on its own.
package strategy
