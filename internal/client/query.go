package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"mip-notes/internal/logger"
)

// QueryKey идентификатор запроса в кэше
type QueryKey string

// NotesKey ключ запроса списка заметок
const NotesKey QueryKey = "notes"

// QueryStatus состояние запроса
type QueryStatus int

const (
	StatusIdle QueryStatus = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s QueryStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// QueryFunc загружает данные запроса
type QueryFunc func(ctx context.Context) (any, error)

// Snapshot то, что видит потребитель запроса. Детали ошибки сведены к флагу.
// Во время перезагрузки после инвалидации IsLoading = true, а Data содержит прежние данные.
type Snapshot struct {
	Data      any
	IsLoading bool
	IsError   bool
}

type query struct {
	fn     QueryFunc
	status QueryStatus
	data   any
	stale  bool
	// gen растет при каждой инвалидации, результаты старых загрузок отбрасываются
	gen  uint64
	subs map[chan struct{}]struct{}
}

// QueryClient кэш запросов с инвалидацией по ключу
type QueryClient struct {
	mu      sync.Mutex
	queries map[QueryKey]*query
	group   singleflight.Group

	ctx            context.Context
	cancel         context.CancelFunc
	refetchTimeout time.Duration
	background     sync.WaitGroup
	log            *logger.Logger
}

// QueryOption настройка QueryClient
type QueryOption func(*QueryClient)

// WithRefetchTimeout ограничивает фоновую перезагрузку после инвалидации
func WithRefetchTimeout(d time.Duration) QueryOption {
	return func(c *QueryClient) { c.refetchTimeout = d }
}

// WithLogger логгер для ошибок фоновой перезагрузки
func WithLogger(log *logger.Logger) QueryOption {
	return func(c *QueryClient) { c.log = log }
}

// NewQueryClient создает пустой кэш
func NewQueryClient(opts ...QueryOption) *QueryClient {
	ctx, cancel := context.WithCancel(context.Background())
	c := &QueryClient{
		queries:        make(map[QueryKey]*query),
		ctx:            ctx,
		cancel:         cancel,
		refetchTimeout: defaultTimeout,
		log:            logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register связывает ключ с функцией загрузки. Повторная регистрация заменяет функцию.
func (c *QueryClient) Register(key QueryKey, fn QueryFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.get(key).fn = fn
}

// get возвращает запрос по ключу, создавая его в состоянии idle. Вызывается под mu.
func (c *QueryClient) get(key QueryKey) *query {
	q, ok := c.queries[key]
	if !ok {
		q = &query{subs: make(map[chan struct{}]struct{})}
		c.queries[key] = q
	}
	return q
}

// Fetch возвращает данные из кэша, если они свежие, иначе загружает их.
// Параллельные загрузки одного ключа объединяются.
func (c *QueryClient) Fetch(ctx context.Context, key QueryKey) (any, error) {
	c.mu.Lock()
	q := c.get(key)
	if q.status == StatusSuccess && !q.stale {
		data := q.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	return c.load(ctx, key)
}

// load выполняет загрузку через singleflight и сохраняет результат
func (c *QueryClient) load(ctx context.Context, key QueryKey) (any, error) {
	c.mu.Lock()
	q := c.get(key)
	fn := q.fn
	gen := q.gen
	if fn == nil {
		c.mu.Unlock()
		return nil, &UnknownQueryError{Key: key}
	}
	prev := q.status
	q.status = StatusLoading
	c.mu.Unlock()
	c.notify(key)

	ch := c.group.DoChan(string(key), func() (any, error) {
		return fn(ctx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.abandon(key, q, gen, prev)
		return nil, ctx.Err()
	}

	c.mu.Lock()
	if q.gen == gen {
		if res.Err != nil {
			q.status = StatusError
		} else {
			q.status = StatusSuccess
			q.data = res.Val
			q.stale = false
		}
	}
	c.mu.Unlock()
	c.notify(key)

	return res.Val, res.Err
}

// abandon возвращает статус, выставленный load, если вызывающий перестал ждать загрузку.
// Загрузки новых поколений статус не трогают.
func (c *QueryClient) abandon(key QueryKey, q *query, gen uint64, prev QueryStatus) {
	c.mu.Lock()
	restored := q.gen == gen && q.status == StatusLoading
	if restored {
		if prev == StatusLoading {
			prev = StatusIdle
		}
		if prev == StatusIdle && q.data != nil {
			prev = StatusSuccess
		}
		q.status = prev
	}
	c.mu.Unlock()

	if restored {
		c.notify(key)
	}
}

// InvalidateQueries помечает запрос устаревшим и запускает фоновую перезагрузку,
// если запрос уже загружался. Вызывающий не ждет перезагрузки.
func (c *QueryClient) InvalidateQueries(key QueryKey) {
	c.mu.Lock()
	q := c.get(key)
	q.stale = true
	q.gen++
	active := q.fn != nil && q.status != StatusIdle
	c.mu.Unlock()

	// загрузка, начатая до мутации, может вернуть старые данные
	c.group.Forget(string(key))

	if !active {
		return
	}

	c.background.Add(1)
	go func() {
		defer c.background.Done()

		ctx, cancel := context.WithTimeout(c.ctx, c.refetchTimeout)
		defer cancel()

		if _, err := c.load(ctx, key); err != nil {
			c.log.WithError(err).WithField("query", string(key)).Warn("background refetch failed")
		}
	}()
}

// Snapshot текущее состояние запроса
func (c *QueryClient) Snapshot(key QueryKey) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.queries[key]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Data:      q.data,
		IsLoading: q.status == StatusLoading,
		IsError:   q.status == StatusError,
	}
}

// Status текущий статус запроса
func (c *QueryClient) Status(key QueryKey) QueryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if q, ok := c.queries[key]; ok {
		return q.status
	}
	return StatusIdle
}

// Subscribe возвращает канал, в который приходит сигнал после каждого изменения состояния запроса.
// Сигналы не накапливаются: канал с буфером 1. Возвращаемая функция отписывает.
func (c *QueryClient) Subscribe(key QueryKey) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	q := c.get(key)
	q.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(q.subs, ch)
			c.mu.Unlock()
		})
	}
}

func (c *QueryClient) notify(key QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ch := range c.get(key).subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close отменяет фоновые перезагрузки и ждет их завершения
func (c *QueryClient) Close() {
	c.cancel()
	c.background.Wait()
}

// UnknownQueryError запрос без зарегистрированной функции загрузки
type UnknownQueryError struct {
	Key QueryKey
}

func (e *UnknownQueryError) Error() string {
	return "no query function registered for " + string(e.Key)
}
