package engine

// list is an intrusive doubly-linked list over a fixed pool of slot
// indices. It keeps draw and update order for active sprites and palette
// animations without allocating per frame.
type list struct {
	first, last int
	prev, next  []int
	linked      []bool
}

func newList(n int) list {
	l := list{first: -1, last: -1, prev: make([]int, n), next: make([]int, n), linked: make([]bool, n)}
	for i := range l.prev {
		l.prev[i], l.next[i] = -1, -1
	}
	return l
}

func (l *list) contains(i int) bool { return l.linked[i] }

func (l *list) append(i int) {
	if l.linked[i] {
		return
	}
	l.prev[i], l.next[i] = l.last, -1
	if l.last == -1 {
		l.first = i
	} else {
		l.next[l.last] = i
	}
	l.last = i
	l.linked[i] = true
}

func (l *list) unlink(i int) {
	if !l.linked[i] {
		return
	}
	p, n := l.prev[i], l.next[i]
	if p == -1 {
		l.first = n
	} else {
		l.next[p] = n
	}
	if n == -1 {
		l.last = p
	} else {
		l.prev[n] = p
	}
	l.prev[i], l.next[i] = -1, -1
	l.linked[i] = false
}

// pushFront moves i to the head of the list.
func (l *list) pushFront(i int) {
	l.unlink(i)
	l.prev[i], l.next[i] = -1, l.first
	if l.first == -1 {
		l.last = i
	} else {
		l.prev[l.first] = i
	}
	l.first = i
	l.linked[i] = true
}

// insertAfter moves i right behind at, which must be linked.
func (l *list) insertAfter(at, i int) {
	if at == i {
		return
	}
	l.unlink(i)
	n := l.next[at]
	l.prev[i], l.next[i] = at, n
	l.next[at] = i
	if n == -1 {
		l.last = i
	} else {
		l.prev[n] = i
	}
	l.linked[i] = true
}

// each walks the list in order.
func (l *list) each(fn func(i int)) {
	for i := l.first; i != -1; i = l.next[i] {
		fn(i)
	}
}
