// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package integration_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/comail/go-uuid/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func postRecord(key string, body string) *http.Response {
	resp, err := http.Post(baseURL+"/api/v0/"+key, "application/json", strings.NewReader(body))
	Expect(err).ToNot(HaveOccurred())
	return resp
}

func getBody(url string) (int, []byte) {
	resp, err := http.Get(url)
	Expect(err).ToNot(HaveOccurred())
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	Expect(err).ToNot(HaveOccurred())
	return resp.StatusCode, body
}

var _ = Describe("Single record round-trip", func() {
	key := uuid.New()

	It("stores and returns the posted record verbatim", func() {
		resp := postRecord(key, `{"k":"v"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		status, body := getBody(baseURL + "/api/v0/" + key + "/latest")
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(MatchJSON(`{"k":"v"}`))

		status, body = getBody(baseURL + "/api/v0/" + key + "/0")
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(MatchJSON(`{"k":"v"}`))

		status, _ = getBody(baseURL + "/api/v0/" + key + "/1")
		Expect(status).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("Aggregate update", func() {
	It("maintains a running temperature average", func() {
		resp := postRecord("t", `{"temp":8.0}`)
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		resp = postRecord("t", `{"temp":4.0}`)
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		status, body := getBody(baseURL + "/api/v0/t/aggregates")
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(MatchJSON(`{"temp_sum":12.0,"temp_sum_count":2.0,"temp_avg":6.0}`))
	})
})

var _ = Describe("Metadata independence", func() {
	key := uuid.New()

	It("is reachable through meta alone, without any posted record", func() {
		payload := `{"x":1}`
		body := bytes.NewBufferString(payload)
		resp, err := http.Post(baseURL+"/api/v0/"+key+"/meta", "application/json", body)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		status, got := getBody(baseURL + "/api/v0/" + key)
		Expect(status).To(Equal(http.StatusOK))

		status, got = getBody(baseURL + "/api/v0/" + key + "/meta")
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(got)).To(MatchJSON(payload))

		status, _ = getBody(baseURL + "/api/v0/" + key + "/latest")
		Expect(status).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("Range clamp", func() {
	key := uuid.New()

	It("clamps an out-of-span range query to the available data", func() {
		for i := 0; i < 3; i++ {
			resp := postRecord(key, fmt.Sprintf(`{"i":%d}`, i))
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
		}

		status, body := getBody(baseURL + "/api/v0/" + key + "/0/100")
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`"i":0`))
		Expect(string(body)).To(ContainSubstring(`"i":2`))

		status, _ = getBody(baseURL + "/api/v0/" + key + "/5/0")
		Expect(status).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("Content-Length enforcement", func() {
	It("rejects a POST with no Content-Length", func() {
		req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v0/"+uuid.New(), strings.NewReader(""))
		Expect(err).ToNot(HaveOccurred())
		req.ContentLength = -1

		resp, err := http.DefaultClient.Do(req)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusLengthRequired))
	})
})
