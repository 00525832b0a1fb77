// Package sitechat provides a retrieval-augmented chat backend over a crawled
// website. It crawls a site into text documents, indexes them for semantic
// search, and answers questions by forwarding retrieved passages together
// with the conversation history to a large language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, goquery/, gemini/).
package sitechat
