// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package promise_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/peerrpc/promise"
)

func TestResolveAndWait(t *testing.T) {
	p, resolve, _ := promise.New[int]()
	resolve(42)

	v, err := p.Wait()
	if err != nil || v != 42 {
		t.Fatalf("Wait() = %v, %v", v, err)
	}
	if !p.Settled() {
		t.Fatalf("Settled() = false after resolve")
	}
}

func TestRejectAndWait(t *testing.T) {
	want := errors.New("boom")
	p, _, reject := promise.New[int]()
	reject(want)

	_, err := p.Wait()
	if err != want {
		t.Fatalf("Wait() err = %v, want %v", err, want)
	}
}

func TestAtMostOnceSettlement(t *testing.T) {
	p, resolve, reject := promise.New[int]()
	resolve(1)
	resolve(2)
	reject(errors.New("too late"))

	v, err := p.Wait()
	if err != nil || v != 1 {
		t.Fatalf("Wait() = %v, %v, want 1, nil", v, err)
	}
}

func TestThenTransformsFulfillment(t *testing.T) {
	p, resolve, _ := promise.New[int]()
	resolve(10)

	out := promise.Then(p, func(v int) (string, error) {
		return "n=" + string(rune('0'+v%10)), nil
	})

	s, err := out.Wait()
	if err != nil || s != "n=0" {
		t.Fatalf("Then result = %v, %v", s, err)
	}
}

func TestThenPropagatesRejection(t *testing.T) {
	want := errors.New("upstream failed")
	p, _, reject := promise.New[int]()
	reject(want)

	out := promise.Then(p, func(v int) (string, error) {
		t.Fatalf("onOK must not run on a rejected promise")
		return "", nil
	})

	_, err := out.Wait()
	if err != want {
		t.Fatalf("Then() err = %v, want %v", err, want)
	}
}

func TestFailRecoversFromRejection(t *testing.T) {
	p, _, reject := promise.New[int]()
	reject(errors.New("boom"))

	out := promise.Fail(p, func(err error) (int, error) {
		return -1, nil
	})

	v, err := out.Wait()
	if err != nil || v != -1 {
		t.Fatalf("Fail result = %v, %v", v, err)
	}
}

func TestAllResolvesInOrder(t *testing.T) {
	p1, resolve1, _ := promise.New[int]()
	p2, resolve2, _ := promise.New[int]()
	p3, resolve3, _ := promise.New[int]()

	all := promise.All([]*promise.Promise[int]{p1, p2, p3})

	resolve3(3)
	resolve1(1)
	resolve2(2)

	vs, err := all.Wait()
	if err != nil {
		t.Fatalf("All() err = %v", err)
	}
	if len(vs) != 3 || vs[0] != 1 || vs[1] != 2 || vs[2] != 3 {
		t.Fatalf("All() = %v, want [1 2 3]", vs)
	}
}

func TestAllRejectsOnFirstRejection(t *testing.T) {
	p1, _, reject1 := promise.New[int]()
	p2, resolve2, _ := promise.New[int]()

	want := errors.New("p1 failed")
	all := promise.All([]*promise.Promise[int]{p1, p2})

	reject1(want)
	resolve2(2)

	_, err := all.Wait()
	if err != want {
		t.Fatalf("All() err = %v, want %v", err, want)
	}
}
