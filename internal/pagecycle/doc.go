// Package pagecycle reassembles records from ERP exports whose columns are
// spread over a fixed number of consecutive pages.
//
// Page k*N+i of an N-page export holds columns set i of the records listed
// on page k*N (the anchor). The decoder reads one cycle at a time, resolves
// each field's column from the page header, aligns rows by index and hands
// every record to a callback before reading the next cycle. A file of
// thousands of pages is therefore never held in memory.
package pagecycle
