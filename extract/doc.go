/*
Package extract finds candidate hostnames in text files.

Any string looking like a hostname with at least two labels and an alphabetic
top-level label is a candidate, such as “www.example.com” inside a URL or log
line. Strings that rather look like file names, such as “index.html”, are
dropped. Candidates are normalized to lower case and without a trailing
root dot.
*/
package extract
