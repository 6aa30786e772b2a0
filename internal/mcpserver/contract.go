package mcpserver

// PinFormatContract describes how org headlines are marked as pinned, for
// LLM consumers that edit org files directly.
const PinFormatContract = `# Raido Pin Marking Contract

Raido indexes org-mode headlines that carry a pinned marking. Two equivalent
forms exist; either (or both) makes a headline pinned.

## Tag form

` + "```" + `org
* TODO Buy milk :pinned:urgent:
` + "```" + `

The tag comparison is case-insensitive (` + "`" + `:PINNED:` + "`" + ` works too).

## Property form

` + "```" + `org
* Important task
  :PROPERTIES:
  :pinned: yes
  :END:
` + "```" + `

The property key is compared case-insensitively; its value is ignored.

## Rules

1. A headline is any line starting with one or more ` + "`" + `*` + "`" + ` followed by whitespace,
   optionally a TODO keyword (TODO, NEXT, DONE, WAITING, CANCELED), the title,
   and a trailing ` + "`" + `:tag1:tag2:` + "`" + ` group.
2. Property drawers are delimited by literal ` + "`" + `:PROPERTIES:` + "`" + ` and ` + "`" + `:END:` + "`" + ` lines
   directly under the headline.
3. Pin identifiers are derived from the file name (extension stripped) and the
   headline's 1-based line number, e.g. ` + "`" + `inbox-12` + "`" + `. Editing lines above a
   pinned headline changes its identifier on the next scan.
4. Unpinning via the ` + "`" + `remove_pin` + "`" + ` tool removes only the pinned marking; every
   other line of the file is preserved byte for byte.
`
