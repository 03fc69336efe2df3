package observer

import "fmt"

// isUndefOrPrimitive reports whether v cannot hold properties at all.
func isUndefOrPrimitive(v any) bool {
	return !IsContainer(v)
}

// Set assigns target[key] = val and makes the key reactive if it is new.
//
// Arrays take an index key and are updated through the intercepted Splice,
// growing the array if needed. Existing keys are assigned directly; the
// installed interceptor, if any, notifies. New keys on an observed object
// are made reactive and the object's container Dep is notified. New keys on
// a framework instance or on root state are refused with a warning.
//
// Set returns val. The returned error comes from the container itself, for
// example ErrNotWritable or ErrNotExtensible.
func (rt *Runtime) Set(target, key, val any) (any, error) {
	if isUndefOrPrimitive(target) {
		rt.warn("W001", "target", fmt.Sprint(target))
	}

	if arr, ok := target.(*Array); ok && arr != nil {
		idx, ok := arrayIndex(key)
		if !ok {
			rt.warn("W005", "key", fmt.Sprint(key))
			return val, nil
		}
		arr.SetLength(max(arr.Len(), idx))
		arr.Splice(idx, 1, val)
		return val, nil
	}

	obj, ok := target.(*Object)
	if !ok || obj == nil {
		return val, nil
	}

	k := propertyKey(key)
	if obj.Has(k) && !ObjectPrototype.Has(k) {
		return val, obj.Set(k, val)
	}

	ob := obj.ob
	if obj.instance || (ob != nil && ob.vmCount > 0) {
		rt.warn("W003", "key", k)
		return val, nil
	}
	if ob == nil {
		return val, obj.Set(k, val)
	}
	if err := ob.rt.DefineReactive(obj, k, WithValue(val)); err != nil {
		return val, err
	}
	ob.dep.Notify()
	return val, nil
}

// Del deletes target[key] and notifies the container Dep if the target is
// observed. Array indexes are removed through the intercepted Splice.
// Missing keys are a no-op. Framework instances and root state refuse
// deletion with a warning.
func (rt *Runtime) Del(target, key any) error {
	if isUndefOrPrimitive(target) {
		rt.warn("W002", "target", fmt.Sprint(target))
	}

	if arr, ok := target.(*Array); ok && arr != nil {
		idx, ok := arrayIndex(key)
		if !ok {
			rt.warn("W005", "key", fmt.Sprint(key))
			return nil
		}
		arr.Splice(idx, 1)
		return nil
	}

	obj, ok := target.(*Object)
	if !ok || obj == nil {
		return nil
	}

	ob := obj.ob
	if obj.instance || (ob != nil && ob.vmCount > 0) {
		rt.warn("W004", "key", propertyKey(key))
		return nil
	}

	k := propertyKey(key)
	if !obj.HasOwn(k) {
		return nil
	}
	if err := obj.Delete(k); err != nil {
		return err
	}
	if ob == nil {
		return nil
	}
	ob.dep.Notify()
	return nil
}
