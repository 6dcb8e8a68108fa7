/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory DynamoDB client for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docstore/keys"
)

type item = map[string]types.AttributeValue

// Client is an in-memory stand-in for *dynamodb.Client. It understands the
// expressions the ddb store generates: key conditions with =, <, <=, >, >=,
// BETWEEN and begins_with, attribute_exists / attribute_not_exists
// conditions, SET / REMOVE updates and projections. Tables are created on
// first use.
type Client struct {
	mu     sync.RWMutex
	tables map[string]map[string]item
	calls  map[string]int

	putError        error
	getError        error
	deleteError     error
	updateError     error
	batchGetError   error
	batchWriteError error
	queryErrors     []error
	unprocessedGets int
}

// New creates an empty Client.
func New() *Client {
	return &Client{
		tables: make(map[string]map[string]item),
		calls:  make(map[string]int),
	}
}

// WithPutError makes PutItem return err.
func (c *Client) WithPutError(err error) *Client {
	c.putError = err
	return c
}

// WithGetError makes GetItem return err.
func (c *Client) WithGetError(err error) *Client {
	c.getError = err
	return c
}

// WithDeleteError makes DeleteItem return err.
func (c *Client) WithDeleteError(err error) *Client {
	c.deleteError = err
	return c
}

// WithUpdateError makes UpdateItem return err.
func (c *Client) WithUpdateError(err error) *Client {
	c.updateError = err
	return c
}

// WithBatchGetError makes BatchGetItem return err.
func (c *Client) WithBatchGetError(err error) *Client {
	c.batchGetError = err
	return c
}

// WithBatchWriteError makes BatchWriteItem return err.
func (c *Client) WithBatchWriteError(err error) *Client {
	c.batchWriteError = err
	return c
}

// WithQueryErrors makes the next Query calls fail with errs, one per call.
func (c *Client) WithQueryErrors(errs ...error) *Client {
	c.queryErrors = append(c.queryErrors, errs...)
	return c
}

// WithUnprocessedGets makes the next n BatchGetItem calls serve only the
// first key of the request and hand the rest back as unprocessed.
func (c *Client) WithUnprocessedGets(n int) *Client {
	c.unprocessedGets = n
	return c
}

// Calls returns how often op (e.g. "Query") was invoked.
func (c *Client) Calls(op string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls[op]
}

// Len returns the number of items in table.
func (c *Client) Len(table string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables[table])
}

// Items returns a copy of every item in table, in key order.
func (c *Client) Items(table string) []map[string]types.AttributeValue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.tables[table]))
	for id := range c.tables[table] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyItem(c.tables[table][id]))
	}
	return out
}

func (c *Client) table(name string) map[string]item {
	t, ok := c.tables[name]
	if !ok {
		t = make(map[string]item)
		c.tables[name] = t
	}
	return t
}

func (c *Client) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["GetItem"]++
	if c.getError != nil {
		return nil, c.getError
	}

	id, err := itemID(in.Key)
	if err != nil {
		return nil, err
	}
	found, ok := c.table(aws.ToString(in.TableName))[id]
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: copyItem(found)}, nil
}

func (c *Client) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["PutItem"]++
	if c.putError != nil {
		return nil, c.putError
	}

	id, err := itemID(in.Item)
	if err != nil {
		return nil, err
	}
	t := c.table(aws.ToString(in.TableName))
	existing, exists := t[id]
	if err := checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, existing, exists); err != nil {
		return nil, err
	}
	t[id] = copyItem(in.Item)
	return &sdk.PutItemOutput{}, nil
}

func (c *Client) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["DeleteItem"]++
	if c.deleteError != nil {
		return nil, c.deleteError
	}

	id, err := itemID(in.Key)
	if err != nil {
		return nil, err
	}
	t := c.table(aws.ToString(in.TableName))
	existing, exists := t[id]
	if err := checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, existing, exists); err != nil {
		return nil, err
	}
	delete(t, id)
	return &sdk.DeleteItemOutput{}, nil
}

func (c *Client) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["UpdateItem"]++
	if c.updateError != nil {
		return nil, c.updateError
	}

	id, err := itemID(in.Key)
	if err != nil {
		return nil, err
	}
	t := c.table(aws.ToString(in.TableName))
	existing, exists := t[id]
	if err := checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, existing, exists); err != nil {
		return nil, err
	}

	updated := copyItem(existing)
	if updated == nil {
		updated = copyItem(in.Key)
	}
	if err := applyUpdate(aws.ToString(in.UpdateExpression), in.ExpressionAttributeNames, in.ExpressionAttributeValues, updated); err != nil {
		return nil, err
	}
	t[id] = updated
	return &sdk.UpdateItemOutput{Attributes: copyItem(updated)}, nil
}

func (c *Client) BatchGetItem(_ context.Context, in *sdk.BatchGetItemInput, _ ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["BatchGetItem"]++
	if c.batchGetError != nil {
		return nil, c.batchGetError
	}

	out := &sdk.BatchGetItemOutput{
		Responses:       make(map[string][]map[string]types.AttributeValue),
		UnprocessedKeys: make(map[string]types.KeysAndAttributes),
	}
	throttle := c.unprocessedGets > 0
	if throttle {
		c.unprocessedGets--
	}

	for name, ka := range in.RequestItems {
		if len(ka.Keys) > 100 {
			return nil, fmt.Errorf("too many keys in batch: %d", len(ka.Keys))
		}
		list := ka.Keys
		if throttle && len(list) > 1 {
			rest := ka
			rest.Keys = list[1:]
			out.UnprocessedKeys[name] = rest
			list = list[:1]
		}

		names, err := projection(ka.ProjectionExpression, ka.ExpressionAttributeNames)
		if err != nil {
			return nil, err
		}
		t := c.table(name)
		for _, key := range list {
			id, err := itemID(key)
			if err != nil {
				return nil, err
			}
			if found, ok := t[id]; ok {
				out.Responses[name] = append(out.Responses[name], project(found, names))
			}
		}
	}
	return out, nil
}

func (c *Client) BatchWriteItem(_ context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["BatchWriteItem"]++
	if c.batchWriteError != nil {
		return nil, c.batchWriteError
	}

	for name, requests := range in.RequestItems {
		if len(requests) > 25 {
			return nil, fmt.Errorf("too many requests in batch: %d", len(requests))
		}
		t := c.table(name)
		seen := make(map[string]struct{}, len(requests))
		for _, req := range requests {
			var target item
			switch {
			case req.PutRequest != nil:
				target = req.PutRequest.Item
			case req.DeleteRequest != nil:
				target = req.DeleteRequest.Key
			default:
				return nil, fmt.Errorf("empty write request")
			}
			id, err := itemID(target)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("provided list of item keys contains duplicates")
			}
			seen[id] = struct{}{}

			if req.PutRequest != nil {
				t[id] = copyItem(target)
			} else {
				delete(t, id)
			}
		}
	}
	return &sdk.BatchWriteItemOutput{}, nil
}

func (c *Client) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["Query"]++
	if len(c.queryErrors) > 0 {
		err := c.queryErrors[0]
		c.queryErrors = c.queryErrors[1:]
		if err != nil {
			return nil, err
		}
	}

	pkName, skName := keys.PK, keys.SK
	if idx := aws.ToString(in.IndexName); idx != "" {
		pkName, skName = idx+keys.PK, idx+keys.SK
	}

	cond, err := parseKeyCondition(aws.ToString(in.KeyConditionExpression), in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	if cond.pkName != pkName {
		return nil, fmt.Errorf("key condition on %q does not match index partition key %q", cond.pkName, pkName)
	}
	if cond.skName != "" && cond.skName != skName {
		return nil, fmt.Errorf("key condition on %q does not match index sort key %q", cond.skName, skName)
	}

	var matched []item
	for _, it := range c.table(aws.ToString(in.TableName)) {
		pk, ok := stringAttr(it, pkName)
		if !ok || pk != cond.pk {
			continue
		}
		sk, ok := stringAttr(it, skName)
		if !ok {
			continue
		}
		if cond.matches(sk) {
			matched = append(matched, it)
		}
	}

	forward := in.ScanIndexForward == nil || *in.ScanIndexForward
	sort.Slice(matched, func(i, j int) bool {
		a, b := sortID(matched[i], skName), sortID(matched[j], skName)
		if forward {
			return a < b
		}
		return a > b
	})

	if len(in.ExclusiveStartKey) > 0 {
		start := sortID(in.ExclusiveStartKey, skName)
		pos := len(matched)
		for i, it := range matched {
			id := sortID(it, skName)
			if (forward && id > start) || (!forward && id < start) {
				pos = i
				break
			}
		}
		matched = matched[pos:]
	}

	var lastKey map[string]types.AttributeValue
	if in.Limit != nil && int(*in.Limit) < len(matched) {
		matched = matched[:*in.Limit]
		last := matched[len(matched)-1]
		lastKey = map[string]types.AttributeValue{keys.PK: last[keys.PK], keys.SK: last[keys.SK]}
		if pkName != keys.PK {
			lastKey[pkName] = last[pkName]
			lastKey[skName] = last[skName]
		}
	}

	names, err := projection(in.ProjectionExpression, in.ExpressionAttributeNames)
	if err != nil {
		return nil, err
	}
	out := &sdk.QueryOutput{LastEvaluatedKey: lastKey, Count: int32(len(matched))}
	for _, it := range matched {
		out.Items = append(out.Items, project(it, names))
	}
	return out, nil
}

// sortID orders items by index sort key, then table key.
func sortID(it item, skName string) string {
	sk, _ := stringAttr(it, skName)
	pk, _ := stringAttr(it, keys.PK)
	tsk, _ := stringAttr(it, keys.SK)
	return sk + "\x00" + pk + "\x00" + tsk
}

type keyCondition struct {
	pkName string
	pk     string
	skName string
	op     string
	sk     string
	sk2    string
}

func (k keyCondition) matches(sk string) bool {
	switch k.op {
	case "":
		return true
	case "=":
		return sk == k.sk
	case "<":
		return sk < k.sk
	case "<=":
		return sk <= k.sk
	case ">":
		return sk > k.sk
	case ">=":
		return sk >= k.sk
	case "BETWEEN":
		return sk >= k.sk && sk <= k.sk2
	case "begins_with":
		return strings.HasPrefix(sk, k.sk)
	}
	return false
}

func parseKeyCondition(expr string, names map[string]string, values map[string]types.AttributeValue) (keyCondition, error) {
	var kc keyCondition
	parts := strings.SplitN(expr, " AND ", 2)

	pkParts := strings.Fields(parts[0])
	if len(pkParts) != 3 || pkParts[1] != "=" {
		return kc, fmt.Errorf("unsupported partition key condition %q", parts[0])
	}
	kc.pkName = resolveName(pkParts[0], names)
	v, err := stringValue(pkParts[2], values)
	if err != nil {
		return kc, err
	}
	kc.pk = v

	if len(parts) == 1 {
		return kc, nil
	}
	rest := strings.TrimSpace(parts[1])

	if strings.HasPrefix(rest, "begins_with(") && strings.HasSuffix(rest, ")") {
		args := strings.Split(strings.TrimSuffix(strings.TrimPrefix(rest, "begins_with("), ")"), ",")
		if len(args) != 2 {
			return kc, fmt.Errorf("unsupported sort key condition %q", rest)
		}
		kc.skName = resolveName(strings.TrimSpace(args[0]), names)
		kc.op = "begins_with"
		kc.sk, err = stringValue(strings.TrimSpace(args[1]), values)
		return kc, err
	}

	fields := strings.Fields(rest)
	switch {
	case len(fields) == 5 && fields[1] == "BETWEEN" && fields[3] == "AND":
		kc.skName = resolveName(fields[0], names)
		kc.op = "BETWEEN"
		if kc.sk, err = stringValue(fields[2], values); err != nil {
			return kc, err
		}
		kc.sk2, err = stringValue(fields[4], values)
		return kc, err
	case len(fields) == 3:
		switch fields[1] {
		case "=", "<", "<=", ">", ">=":
			kc.skName = resolveName(fields[0], names)
			kc.op = fields[1]
			kc.sk, err = stringValue(fields[2], values)
			return kc, err
		}
	}
	return kc, fmt.Errorf("unsupported sort key condition %q", rest)
}

func checkCondition(expr *string, names map[string]string, existing item, exists bool) error {
	if expr == nil || *expr == "" {
		return nil
	}
	e := strings.TrimSpace(*expr)

	var fn string
	switch {
	case strings.HasPrefix(e, "attribute_not_exists("):
		fn = "attribute_not_exists"
	case strings.HasPrefix(e, "attribute_exists("):
		fn = "attribute_exists"
	default:
		return fmt.Errorf("unsupported condition %q", e)
	}
	name := resolveName(strings.TrimSuffix(strings.TrimPrefix(e, fn+"("), ")"), names)

	present := false
	if exists {
		_, present = existing[name]
	}
	if (fn == "attribute_exists") != present {
		return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	return nil
}

func applyUpdate(expr string, names map[string]string, values map[string]types.AttributeValue, target item) error {
	setPart, removePart := expr, ""
	if i := strings.Index(expr, "REMOVE "); i >= 0 {
		setPart, removePart = expr[:i], expr[i+len("REMOVE "):]
	}
	setPart = strings.TrimSpace(setPart)

	if setPart != "" {
		if !strings.HasPrefix(setPart, "SET ") {
			return fmt.Errorf("unsupported update expression %q", expr)
		}
		for _, clause := range strings.Split(strings.TrimPrefix(setPart, "SET "), ",") {
			lhs, rhs, ok := strings.Cut(clause, "=")
			if !ok {
				return fmt.Errorf("unsupported SET clause %q", clause)
			}
			v, ok := values[strings.TrimSpace(rhs)]
			if !ok {
				return fmt.Errorf("missing value %q", strings.TrimSpace(rhs))
			}
			target[resolveName(strings.TrimSpace(lhs), names)] = v
		}
	}

	for _, name := range strings.Split(removePart, ",") {
		if name = strings.TrimSpace(name); name != "" {
			delete(target, resolveName(name, names))
		}
	}
	return nil
}

func projection(expr *string, names map[string]string) ([]string, error) {
	if expr == nil || *expr == "" {
		return nil, nil
	}
	var out []string
	for _, p := range strings.Split(*expr, ",") {
		out = append(out, resolveName(strings.TrimSpace(p), names))
	}
	return out, nil
}

func project(it item, names []string) item {
	if len(names) == 0 {
		return copyItem(it)
	}
	out := make(item, len(names))
	for _, n := range names {
		if v, ok := it[n]; ok {
			out[n] = v
		}
	}
	return out
}

func resolveName(token string, names map[string]string) string {
	if strings.HasPrefix(token, "#") {
		if n, ok := names[token]; ok {
			return n
		}
	}
	return token
}

func stringValue(token string, values map[string]types.AttributeValue) (string, error) {
	v, ok := values[token].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("missing string value %q", token)
	}
	return v.Value, nil
}

func stringAttr(it item, name string) (string, bool) {
	v, ok := it[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}

func itemID(key item) (string, error) {
	pk, okP := stringAttr(key, keys.PK)
	sk, okS := stringAttr(key, keys.SK)
	if !okP || !okS {
		return "", fmt.Errorf("the provided key element does not match the schema")
	}
	return pk + "\x00" + sk, nil
}

func copyItem(it item) item {
	if it == nil {
		return nil
	}
	out := make(item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}
