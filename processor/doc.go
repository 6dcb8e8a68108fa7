/*
Package processor reads schema documents: files that bundle attribute
definitions with a sites schema and classification schemas.

A document looks like:

	definitions:
	  - key: status
	  - key: amount
	    dataType: NUMBER
	  - key: approved
	    dataType: KEY_ONLY
	    type: GOVERNANCE
	sites:
	  name: default
	  attributes:
	    required:
	      - attributeKey: status
	        allowedValues: [draft, final]
	        defaultValue: draft
	classifications:
	  - name: invoice
	    schema:
	      attributes:
	        required:
	          - attributeKey: amount

Check validates every definition and schema offline, the same way the
services do before writing. Apply provisions a checked document into a
tenant.
*/
package processor
