package value

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anoideaopen/msc/core/classes"
	"github.com/anoideaopen/msc/core/logger"
	"github.com/anoideaopen/msc/core/security"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var allPermissions = security.NewAccessControlContext("injector", security.AllPermission)

func newLookup(
	t *testing.T,
	target Value[*classes.Class],
	name string,
	params []Value[*classes.Class],
	acc *security.AccessControlContext,
	makeAccessible bool,
) *LookupDeclaredMethodValue {
	t.Helper()

	v, err := NewLookupDeclaredMethodValue(target, name, params, acc, makeAccessible)
	require.NoError(t, err)

	return v
}

func TestLookupDeclaredMethodZeroArguments(t *testing.T) {
	r := newTestRegistry(t)

	v := newLookup(t, classValue(t, r, serviceClassName), "Start", []Value[*classes.Class]{}, allPermissions, false)

	m, err := v.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Start", m.Name())
	require.Empty(t, m.ParameterTypes())
	require.Equal(t, serviceClassName, m.DeclaringClass().Name())
}

func TestLookupDeclaredMethodSelectsOverload(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	target := classValue(t, r, serviceClassName)
	str := classValue(t, r, "string")
	num := classValue(t, r, "int")

	v := newLookup(t, target, "configure", []Value[*classes.Class]{str, num}, allPermissions, true)
	m, err := v.Value(ctx)
	require.NoError(t, err)
	require.Len(t, m.ParameterTypes(), 2)

	svc := &testService{}
	_, err = m.Invoke(svc, "api", 8080)
	require.NoError(t, err)
	require.Equal(t, "api", svc.name)
	require.Equal(t, 8080, svc.port)

	v = newLookup(t, target, "configure", []Value[*classes.Class]{str}, allPermissions, true)
	m, err = v.Value(ctx)
	require.NoError(t, err)
	require.Len(t, m.ParameterTypes(), 1)
}

func TestLookupDeclaredMethodParameterOrder(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	str := classValue(t, r, "string")
	num := classValue(t, r, "int")

	// only configure(string, int) is declared
	swapped := newLookup(t, classValue(t, r, serviceClassName), "configure",
		[]Value[*classes.Class]{num, str}, allPermissions, false)
	_, err := swapped.Value(ctx)
	require.ErrorIs(t, err, ErrNoSuchMethod)

	_, err = r.Register((*testService)(nil),
		classes.WithName("example.BothOrders"),
		classes.WithMethod("configure", (*testService).configureNamePort),
		classes.WithMethod("configure", (*testService).configurePortName),
	)
	require.NoError(t, err)
	target := classValue(t, r, "example.BothOrders")

	nameFirst, err := newLookup(t, target, "configure", []Value[*classes.Class]{str, num}, allPermissions, true).Value(ctx)
	require.NoError(t, err)
	portFirst, err := newLookup(t, target, "configure", []Value[*classes.Class]{num, str}, allPermissions, true).Value(ctx)
	require.NoError(t, err)

	svc := &testService{}
	_, err = nameFirst.Invoke(svc, "api", 1)
	require.NoError(t, err)
	require.Equal(t, "api", svc.name)

	_, err = portFirst.Invoke(svc, 2, "api")
	require.NoError(t, err)
	require.Equal(t, "api!", svc.name)
	require.Equal(t, 2, svc.port)
}

func TestLookupDeclaredMethodNotFound(t *testing.T) {
	r := newTestRegistry(t)
	target := classValue(t, r, serviceClassName)

	testCases := []struct {
		name   string
		method string
		params []Value[*classes.Class]
		msg    string
	}{
		{
			name:   "unknown name",
			method: "stop",
			params: []Value[*classes.Class]{},
			msg:    "no such method 'stop' found on class example.Service",
		},
		{
			name:   "promoted from embedded type",
			method: "Describe",
			params: []Value[*classes.Class]{},
			msg:    "no such method 'Describe' found on class example.Service",
		},
		{
			name:   "no widening",
			method: "configure",
			params: []Value[*classes.Class]{classValue(t, r, "string"), classValue(t, r, "int64")},
			msg:    "no such method 'configure' found on class example.Service",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := newLookup(t, target, tc.method, tc.params, allPermissions, false)

			m, err := v.Value(context.Background())
			require.Nil(t, m)
			require.ErrorIs(t, err, ErrNoSuchMethod)
			require.EqualError(t, err, tc.msg)
		})
	}
}

func TestLookupDeclaredMethodAccessibility(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	target := classValue(t, r, serviceClassName)
	params := []Value[*classes.Class]{classValue(t, r, "string")}

	restricted, err := newLookup(t, target, "configure", params, allPermissions, false).Value(ctx)
	require.NoError(t, err)
	require.False(t, restricted.IsAccessible())
	_, err = restricted.Invoke(&testService{}, "api")
	require.ErrorIs(t, err, classes.ErrIllegalAccess)

	accessible, err := newLookup(t, target, "configure", params, allPermissions, true).Value(ctx)
	require.NoError(t, err)
	require.True(t, accessible.IsAccessible())

	svc := &testService{}
	_, err = accessible.Invoke(svc, "api")
	require.NoError(t, err)
	require.Equal(t, "api", svc.name)

	// accessibility belongs to the returned handle only
	again, err := newLookup(t, target, "configure", params, allPermissions, false).Value(ctx)
	require.NoError(t, err)
	require.False(t, again.IsAccessible())
}

func TestNewLookupDeclaredMethodValueErrors(t *testing.T) {
	r := newTestRegistry(t)
	target := classValue(t, r, serviceClassName)
	empty := []Value[*classes.Class]{}

	testCases := []struct {
		name   string
		target Value[*classes.Class]
		method string
		params []Value[*classes.Class]
		acc    *security.AccessControlContext
		err    error
	}{
		{name: "nil target", target: nil, method: "Start", params: empty, acc: allPermissions, err: ErrNilTarget},
		{name: "empty method name", target: target, method: "", params: empty, acc: allPermissions, err: ErrEmptyMethodName},
		{name: "nil parameter types", target: target, method: "Start", params: nil, acc: allPermissions, err: ErrNilParameterTypes},
		{
			name:   "nil parameter type",
			target: target,
			method: "configure",
			params: []Value[*classes.Class]{classValue(t, r, "string"), nil},
			acc:    allPermissions,
			err:    ErrNilParameterType,
		},
		{name: "nil context", target: target, method: "Start", params: empty, acc: nil, err: ErrNilContext},
		{
			name:   "typed nil target",
			target: (*LookupClassValue)(nil),
			method: "Start",
			params: empty,
			acc:    allPermissions,
			err:    ErrNilTarget,
		},
		{
			name:   "typed nil parameter type",
			target: target,
			method: "configure",
			params: []Value[*classes.Class]{(*LookupClassValue)(nil)},
			acc:    allPermissions,
			err:    ErrNilParameterType,
		},
		{
			name:   "nil func parameter type",
			target: target,
			method: "configure",
			params: []Value[*classes.Class]{Func[*classes.Class](nil)},
			acc:    allPermissions,
			err:    ErrNilParameterType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewLookupDeclaredMethodValue(tc.target, tc.method, tc.params, tc.acc, true)
			require.Nil(t, v)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLookupDeclaredMethodCopiesParameterTypes(t *testing.T) {
	r := newTestRegistry(t)
	params := []Value[*classes.Class]{classValue(t, r, "string")}

	v := newLookup(t, classValue(t, r, serviceClassName), "configure", params, allPermissions, false)
	params[0] = classValue(t, r, "int")

	m, err := v.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, "string", m.ParameterTypes()[0].String())
}

func TestLookupDeclaredMethodPropagatesDependencyErrors(t *testing.T) {
	r := newTestRegistry(t)
	errBroken := errors.New("broken class value")
	broken := Func[*classes.Class](func(context.Context) (*classes.Class, error) {
		return nil, errBroken
	})

	v := newLookup(t, broken, "Start", []Value[*classes.Class]{}, allPermissions, false)
	_, err := v.Value(context.Background())
	require.Same(t, errBroken, err)

	v = newLookup(t, classValue(t, r, serviceClassName), "configure",
		[]Value[*classes.Class]{classValue(t, r, "string"), broken}, allPermissions, false)
	_, err = v.Value(context.Background())
	require.Same(t, errBroken, err)

	v = newLookup(t, classValue(t, r, serviceClassName), "configure",
		[]Value[*classes.Class]{classValue(t, r, "example.Missing")}, allPermissions, false)
	_, err = v.Value(context.Background())
	require.ErrorIs(t, err, classes.ErrClassNotFound)

	nilClass := NewImmediateValue[*classes.Class](nil)
	v = newLookup(t, nilClass, "Start", []Value[*classes.Class]{}, allPermissions, false)
	_, err = v.Value(context.Background())
	require.ErrorIs(t, err, ErrNilClass)

	v = newLookup(t, classValue(t, r, serviceClassName), "configure", []Value[*classes.Class]{nilClass}, allPermissions, false)
	_, err = v.Value(context.Background())
	require.ErrorIs(t, err, ErrNilClass)
}

func TestLookupDeclaredMethodEvaluationOrder(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}

	v := newLookup(t,
		rec.wrap("target", classValue(t, r, serviceClassName)),
		"configure",
		[]Value[*classes.Class]{
			rec.wrap("param0", classValue(t, r, "string")),
			rec.wrap("param1", classValue(t, r, "int")),
		},
		allPermissions,
		false,
	)

	_, err := v.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"param0", "param1", "target"}, rec.Calls())

	// no caching: a second evaluation resolves everything again
	_, err = v.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"param0", "param1", "target", "param0", "param1", "target"}, rec.Calls())
}

func TestLookupDeclaredMethodObservesRedefinition(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()
	v := newLookup(t, classValue(t, r, serviceClassName), "Start", []Value[*classes.Class]{}, allPermissions, false)

	first, err := v.Value(ctx)
	require.NoError(t, err)

	_, err = r.Register((*testService)(nil), classes.WithName(serviceClassName))
	require.NoError(t, err)

	second, err := v.Value(ctx)
	require.NoError(t, err)
	require.NotSame(t, first.DeclaringClass(), second.DeclaringClass())

	_, err = r.Register(testBase{}, classes.WithName(serviceClassName))
	require.NoError(t, err)

	_, err = v.Value(ctx)
	require.ErrorIs(t, err, ErrNoSuchMethod)
}

func TestLookupDeclaredMethodUnderSecurityManager(t *testing.T) {
	r := newTestRegistry(t)
	target := classValue(t, r, serviceClassName)
	params := []Value[*classes.Class]{classValue(t, r, "string"), classValue(t, r, "int")}

	caller := security.NewAccessControlContext("caller")
	lookupOnly := security.NewAccessControlContext("lookup", security.AccessDeclaredMembers)
	nothing := security.NewAccessControlContext("nothing")

	withManager := security.WithContext(
		security.WithManager(context.Background(), security.NewManager(caller)),
		caller,
	)

	testCases := []struct {
		name           string
		ctx            context.Context
		acc            *security.AccessControlContext
		makeAccessible bool
		err            error
	}{
		{name: "no manager, full context", ctx: context.Background(), acc: allPermissions, makeAccessible: true},
		{name: "no manager, empty context", ctx: context.Background(), acc: nothing, makeAccessible: true},
		{name: "manager, full context", ctx: withManager, acc: allPermissions, makeAccessible: true},
		{name: "manager, lookup only", ctx: withManager, acc: lookupOnly, makeAccessible: false},
		{name: "manager, lookup only, make accessible", ctx: withManager, acc: lookupOnly, makeAccessible: true, err: security.ErrAccessDenied},
		{name: "manager, empty context", ctx: withManager, acc: nothing, makeAccessible: false, err: security.ErrAccessDenied},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := newLookup(t, target, "configure", params, tc.acc, tc.makeAccessible)

			m, err := v.Value(tc.ctx)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Nil(t, m)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "configure", m.Name())
			require.Equal(t, tc.makeAccessible, m.IsAccessible())
		})
	}
}

func TestLookupDeclaredMethodParityWithAndWithoutManager(t *testing.T) {
	r := newTestRegistry(t)
	target := classValue(t, r, serviceClassName)
	v := newLookup(t, target, "configure", []Value[*classes.Class]{classValue(t, r, "string")}, allPermissions, true)

	plain, err := v.Value(context.Background())
	require.NoError(t, err)

	ctx := security.WithManager(context.Background(), security.NewManager(nil))
	privileged, err := v.Value(ctx)
	require.NoError(t, err)

	require.Equal(t, plain.String(), privileged.String())
	require.Equal(t, plain.IsAccessible(), privileged.IsAccessible())

	missing := newLookup(t, target, "Describe", []Value[*classes.Class]{}, allPermissions, true)
	_, errPlain := missing.Value(context.Background())
	_, errPrivileged := missing.Value(ctx)
	require.ErrorIs(t, errPlain, ErrNoSuchMethod)
	require.ErrorIs(t, errPrivileged, ErrNoSuchMethod)
	require.Equal(t, errPlain.Error(), errPrivileged.Error())
}

func TestLookupDeclaredMethodConcurrentEvaluation(t *testing.T) {
	r := newTestRegistry(t)
	v := newLookup(t, classValue(t, r, serviceClassName), "configure",
		[]Value[*classes.Class]{classValue(t, r, "string"), classValue(t, r, "int")}, allPermissions, true)

	const workers = 16

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := v.Value(context.Background())
			if err == nil && !m.IsAccessible() {
				err = classes.ErrIllegalAccess
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestLookupDeclaredMethodSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	r := newTestRegistry(t)
	target := classValue(t, r, serviceClassName)

	_, err := newLookup(t, target, "Start", []Value[*classes.Class]{}, allPermissions, false).Value(context.Background())
	require.NoError(t, err)
	_, err = newLookup(t, target, "stop", []Value[*classes.Class]{}, allPermissions, false).Value(context.Background())
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "LookupDeclaredMethodValue", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, err.Error(), spans[1].Status().Description)
}

func TestLookupDeclaredMethodLogs(t *testing.T) {
	l := logger.Logger()
	level := l.GetLevel()
	t.Cleanup(func() { l.SetLevel(level) })
	l.SetLevel(logrus.DebugLevel)

	hook := test.NewLocal(l)
	defer hook.Reset()

	r := newTestRegistry(t)
	v := newLookup(t, classValue(t, r, serviceClassName), "Start", []Value[*classes.Class]{}, allPermissions, false)
	_, err := v.Value(context.Background())
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, "declared method resolved", entry.Message)
	require.Equal(t, "example.Service.Start()", entry.Data["method"])
	require.Equal(t, "injector", entry.Data["context"])
}
