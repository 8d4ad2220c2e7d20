/*
Package report turns matches into the final report: deduplicated and sorted
“name[addr]” lines, with names stripped of their trailing root dot.

Reports are then handed to one or more [Reporter]s, such as writing them to
stdout and additionally into an output file.
*/
package report
