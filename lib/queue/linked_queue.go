package queue

type queueElement[E any] struct {
	next  *queueElement[E]
	value E
}

type linkedQueue[E any] struct {
	head, tail *queueElement[E]
	count      int64
}

func (q *linkedQueue[E]) Len() int64 {
	return q.count
}

func (q *linkedQueue[E]) IsEmpty() bool {
	return q.head == nil
}

func (q *linkedQueue[E]) Enqueue(elements ...E) {
	for i := 0; i < len(elements); i++ {
		e := &queueElement[E]{value: elements[i]}
		if q.tail == nil {
			q.head, q.tail = e, e
		} else {
			q.tail.next = e
			q.tail = e
		}
		q.count++
	}
}

func (q *linkedQueue[E]) Dequeue() (E, error) {
	if q.head == nil {
		var e E
		return e, ErrQueueEmpty
	}
	e := q.head
	q.head = e.next
	if q.head == nil {
		q.tail = nil
	}
	e.next = nil
	q.count--
	return e.value, nil
}

func (q *linkedQueue[E]) Peek() (E, error) {
	if q.head == nil {
		var e E
		return e, ErrQueueEmpty
	}
	return q.head.value, nil
}

func (q *linkedQueue[E]) Foreach(action func(idx int64, e E) bool) {
	idx := int64(0)
	for aux := q.head; aux != nil; aux = aux.next {
		if !action(idx, aux.value) {
			return
		}
		idx++
	}
}

// Clear unlinks every element so that the values can be collected.
func (q *linkedQueue[E]) Clear() {
	for aux := q.head; aux != nil; {
		next := aux.next
		aux.next = nil
		aux = next
	}
	q.head, q.tail = nil, nil
	q.count = 0
}

func NewLinkedQueue[E any](elements ...E) Queue[E] {
	q := &linkedQueue[E]{}
	q.Enqueue(elements...)
	return q
}
