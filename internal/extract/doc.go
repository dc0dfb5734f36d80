// Package extract pulls links and fields out of HTML documents with CSS
// selectors.
//
// A selector tree is made of Nodes. A node with Children is a group; a node
// without is a rule that reads one field. Every child of a group runs
// independently against the same document (or against the first element
// matching the group's Scope) and their partial records are merged. Field
// names are qualified by the group path, so the rule "title" inside the group
// "job" produces the field "job.title".
//
// Missing elements are not errors: a rule that matches nothing simply leaves
// its field out of the record.
package extract
