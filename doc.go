/*
Package gunnyscript parses and encodes GunnyScript, a JSON-like data format
with dates, date-times, literal and dedent strings, and /// doc comments:

	/// Site settings.
	{
	  title "Gunny"
	  /// Shown in the footer.
	  published 2020-01-02
	  updated 2020-01-02T12:54:00-05:00
	  tags ["go", "parsing"]
	  intro d"
	    Indentation shared by every line
	    is removed.
	  "
	}

The package offers three ways in, depending on the use case:

1. Data-Oriented Decoding and Encoding

Marshal and Unmarshal convert between GunnyScript and Go values, mirroring
the standard encoding/json package:

	type Site struct {
		Title     string        `gunny:"title"`
		Published datetime.Date `gunny:"published"`
		Tags      []string      `gunny:"tags,omitempty"`
	}

	var site Site
	if err := gunnyscript.Unmarshal(data, &site); err != nil {
		// handle error
	}

Numbers are unsigned, signed or 64.64 fixed-point; unmarshaling into an
integer or float fails when the value does not fit. Dates map to
datetime.Date or time.Time and date-times to datetime.DateTime or time.Time.
When encoding, a `doc:"..."` struct tag becomes the field's doc comment.

2. Document Trees

Parse returns an *ast.Document that keeps doc comments and property order.
A tree can be modified and written back with Marshal, which keeps the doc
comments, or canonicalized directly with Format.

3. Streaming Events

A document is a flat sequence of events (token.Token): START and END of
arrays and objects, PROPERTY names, VALUEs, DOC_COMMENT lines and LINESPACE
for blank lines. Tokenize returns them all at once. A Scanner produces them
incrementally from input fed in arbitrary chunks and reports ErrIncomplete
until enough bytes have arrived; a Decoder does the same while reading an
io.Reader. Build assembles events into a tree.

Syntax errors are *ParseError values carrying an errors.Code and the line and
column where they were found.

Package convert translates documents to and from JSON, YAML and TOML, and
the gunny command wraps checking, formatting and conversion for the shell.
*/
package gunnyscript
