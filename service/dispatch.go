// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import "code.hybscloud.com/peerrpc/value"

// splitMethod splits "obj.method" on its first '.'. An unqualified method
// name (no dot) yields an empty object name.
func splitMethod(method string) (objName, methodName string) {
	for i := 0; i < len(method); i++ {
		if method[i] == '.' {
			return method[:i], method[i+1:]
		}
	}
	return "", method
}

// normalizeArgs turns one dynamic args Value into a positional list: Null
// becomes no arguments, a List becomes its elements, and anything else
// (including a Map — reserved for future named args) becomes a single-
// element list.
func normalizeArgs(args value.Value) []value.Value {
	switch args.Kind() {
	case value.KindNull:
		return nil
	case value.KindList:
		items, _ := args.AsList()
		return items
	default:
		return []value.Value{args}
	}
}

// handleRequest is wired as every accepted peer's inbound-request
// callback. It implements the routing contract: split the method name,
// look up the object then the method, normalize the args, invoke, and
// settle exactly once.
//
// Grounded on juju/rpc.Conn.handleRequest/bindRequest for the split-
// name/look-up/invoke/reply shape.
func (s *Service) handleRequest(method string, args value.Value, resolve func(value.Value), reject func(string)) {
	objName, methodName := splitMethod(method)

	obj, ok := s.registry.lookup(objName)
	if !ok {
		reject(ErrObjectNotFound.Error())
		return
	}

	handler, ok := obj.Handlers.Methods[methodName]
	if !ok {
		reject(ErrMethodNotFound.Error())
		return
	}

	result := handler(normalizeArgs(args))
	settleResult(result, resolve, reject)
}

// settleResult calls exactly one of resolve/reject, synchronously for an
// immediate Result and asynchronously (once the chained promise settles)
// for Async — the dispatcher must not reply before an async handler's
// promise fulfills or rejects.
func settleResult(result Result, resolve func(value.Value), reject func(string)) {
	switch result.kind {
	case resultOk:
		resolve(result.ok)
	case resultErr:
		reject(result.errMsg)
	case resultAsync:
		go func() {
			v, err := result.async.Wait()
			if err != nil {
				reject(err.Error())
				return
			}
			resolve(v)
		}()
	}
}
