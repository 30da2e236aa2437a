// Package crawler discovers the pages a run should visit.
//
// Discovery is one level deep: the start page is fetched through the fetch
// engine (so it gets the same proxy rotation and retries as any other page),
// its anchors are resolved and filtered, and the first maxPages unique URLs
// on the same host become the run's work list, start URL first.
//
// Filtering drops:
//   - links to other hosts and non-http(s) schemes
//   - static assets (images, PDFs, stylesheets, scripts, archives, media)
//   - paths matching the site's ignore patterns, or missing its follow
//     patterns when those are set
//
// # Usage
//
//	spider := crawler.NewSpider(engine, crawler.WithMaxPages(10))
//	result, err := spider.Discover(ctx, "https://example.com/")
//	// result.URLs[0] is the start URL; result.Start is its document.
package crawler
