package value

func (v *Value) list(op string) (*List, error) {
	if v == nil {
		return nil, newError(StatusNoInput, op, "nil value")
	}
	l, ok := v.p.(*List)
	if !ok {
		return nil, newError(StatusFail, op, "%s is not a list", v.Kind())
	}
	return l, nil
}

// PushBack appends item. The list takes ownership of item's payload.
func (v *Value) PushBack(item Value) error {
	l, err := v.list("PushBack")
	if err != nil {
		return err
	}
	l.items = append(l.items, item)
	return nil
}

// PushFront prepends item. The list takes ownership of item's payload.
func (v *Value) PushFront(item Value) error {
	l, err := v.list("PushFront")
	if err != nil {
		return err
	}
	l.items = append(l.items, Value{})
	copy(l.items[1:], l.items)
	l.items[0] = item
	return nil
}

// PopBack removes and returns the last element. The caller owns it.
func (v *Value) PopBack() (Value, error) {
	const op = "PopBack"
	l, err := v.list(op)
	if err != nil {
		return Value{}, err
	}
	if len(l.items) == 0 {
		return Value{}, newError(StatusFail, op, "empty list")
	}
	last := len(l.items) - 1
	item := l.items[last]
	l.items[last] = Value{}
	l.items = l.items[:last]
	return item, nil
}

// PopFront removes and returns the first element. The caller owns it.
func (v *Value) PopFront() (Value, error) {
	const op = "PopFront"
	l, err := v.list(op)
	if err != nil {
		return Value{}, err
	}
	if len(l.items) == 0 {
		return Value{}, newError(StatusFail, op, "empty list")
	}
	item := l.items[0]
	l.items[0] = Value{}
	l.items = l.items[1:]
	return item, nil
}

// Len returns the number of elements.
func (v *Value) Len() (int, error) {
	l, err := v.list("Len")
	if err != nil {
		return 0, err
	}
	return len(l.items), nil
}

// Index returns the element at i without removing it. The pointer stays
// valid until the list is next modified.
func (v *Value) Index(i int) (*Value, error) {
	const op = "Index"
	l, err := v.list(op)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(l.items) {
		return nil, newError(StatusFail, op, "index %d out of range [0,%d)", i, len(l.items))
	}
	return &l.items[i], nil
}
