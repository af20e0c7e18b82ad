// Package harness runs conformance scenarios against the query engine.
//
// A scenario is a YAML file naming a dataset and a list of queries, each
// with the docs, doc count or error code it must produce:
//
//	name: one_hop
//	description: Alice's direct acquaintances
//	dataset: datasets/social.yaml
//	queries:
//	  - name: friends
//	    query: MATCH (a:Person)-[:KNOWS]->(b:Person) WHERE a.name = 'Alice' RETURN b.name AS name
//	    expect:
//	      unordered: true
//	      docs:
//	        - {name: Bob}
//	        - {name: Carol}
//	  - name: broken
//	    query: MATCH (
//	    expect:
//	      error: PARSE_ERROR
//
// Every scenario runs against a fresh store with deterministic request ids,
// so its outcomes can also be compared byte for byte with a golden file.
package harness
