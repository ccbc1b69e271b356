// Package rest exposes the NSPI operations over JSON/HTTP.
//
// Every operation is a POST to /nspi/v1/{operation} whose body mirrors
// the operation's request. Bind returns a session handle that later
// requests carry in the X-NSPI-Session header.
//
// # Endpoints
//
//	POST /nspi/v1/bind              - Open a session
//	POST /nspi/v1/unbind            - Close the session
//	POST /nspi/v1/resolveNames      - ANR over 8-bit names
//	POST /nspi/v1/resolveNamesW     - ANR over Unicode names
//	POST /nspi/v1/updateStat        - Move the cursor
//	POST /nspi/v1/queryRows         - Read rows at the cursor
//	POST /nspi/v1/seekEntries       - Position the cursor by name
//	POST /nspi/v1/getMatches        - Build an explicit table
//	POST /nspi/v1/resortRestriction - Sort an explicit table
//	POST /nspi/v1/compareMIds       - Order two rows
//	POST /nspi/v1/getProps          - Read one object
//	POST /nspi/v1/getPropList       - List an object's properties
//	POST /nspi/v1/queryColumns      - List every known property
//	POST /nspi/v1/dnToMId           - Map DNs to MIds
//	POST /nspi/v1/modProps          - Replace certificate properties
//	POST /nspi/v1/modLinkAtt        - Change membership links
//	POST /nspi/v1/getSpecialTable   - Read the hierarchy table
//	POST /nspi/v1/getTemplateInfo   - Read a display template
//	GET  /nspi/v1/health            - Health check
//
// Every defined NSPI result is returned with HTTP 200 and the code in
// the body. Malformed bodies yield 400, unknown operations 404, and a
// missing or unknown session 401.
//
// # Values
//
// Property values are objects of the form {"tag": 805371935, "value": ...}.
// The value's JSON shape follows the tag type: numbers for integers,
// booleans, strings for PtypString, base64 for PtypString8 and binary
// types, and arrays for multi-valued types.
//
// # Example Usage
//
//	curl -X POST http://localhost:8080/nspi/v1/bind \
//	  -d '{"flags": 0, "stat": {"codePage": 1252, "templateLocale": 1033, "sortLocale": 1033}}'
//
//	curl -X POST http://localhost:8080/nspi/v1/resolveNamesW \
//	  -H "X-NSPI-Session: <handle>" \
//	  -d '{"stat": {"codePage": 1200, "sortLocale": 1033}, "names": ["alice"]}'
package rest
