// Package model defines the records jobscan produces and the results of a
// crawl run.
//
//   - Company and Job: the two halves of an extracted Record
//   - Salary: the pay attached to a job, as a tagged variant
//   - CrawlResult and CrawlError: what one crawl of one search produced
//   - SearchReport: a crawl result plus the bookkeeping of the pipeline that ran it
//
// Models live in their own package so the crawler, the database and the
// report writers can share them without import cycles. They serialize to JSON
// for reports and database storage.
package model
