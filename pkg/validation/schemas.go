package validation

const executionRequestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://agencyflow.dev/schemas/execution-request.json",
  "type": "object",
  "properties": {
    "triggerData": { "type": ["object", "null"] },
    "context": { "type": ["object", "null"] },
    "testMode": { "type": "boolean" }
  },
  "additionalProperties": false
}`

const workflowSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://agencyflow.dev/schemas/workflow.json",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "id": { "type": "string" },
    "name": { "type": "string" },
    "status": {
      "type": "string",
      "enum": ["DRAFT", "ACTIVE", "PAUSED", "ARCHIVED"]
    },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/definitions/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/definitions/edge" }
    },
    "settings": {
      "type": "object",
      "properties": {
        "conditionFailurePolicy": {
          "type": "string",
          "enum": ["", "continue", "block", "fail"]
        },
        "strictEdges": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "executionCount": { "type": "integer", "minimum": 0 },
    "lastExecutedAt": {}
  },
  "additionalProperties": false,
  "definitions": {
    "node": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "type": "string", "minLength": 1 },
        "name": { "type": "string" },
        "data": { "type": ["object", "null"] }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["source", "target"],
      "properties": {
        "id": { "type": "string" },
        "source": { "type": "string", "minLength": 1 },
        "target": { "type": "string", "minLength": 1 },
        "condition": {
          "type": ["object", "null"],
          "required": ["type"],
          "properties": {
            "type": {
              "type": "string",
              "enum": ["success", "error", "equals", "contains", "greater_than", "less_than", "exists", "custom"]
            },
            "field": { "type": "string" },
            "value": {},
            "expression": { "type": "string" }
          },
          "additionalProperties": false
        }
      },
      "additionalProperties": false
    }
  }
}`
