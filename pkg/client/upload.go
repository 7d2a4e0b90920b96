package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// ProgressFunc 收到0~100的上传百分比，只在百分比增加时调用
type ProgressFunc func(percent int)

// Upload 上传一个视频：1、本地按同一套规则校验，不通过不发请求 2、通过io.Pipe流式发送multipart请求，并报告进度 3、解析服务端返回的记录
// ctx取消只会停止等待，已经到达媒体托管服务的字节无法撤回
func (c *Client) Upload(ctx context.Context, form Form, progress ProgressFunc) (*Video, error) {
	if err := c.limits.Check(form.submission()); err != nil {
		return nil, err
	}

	// 先写一遍不带文件内容的骨架，得到精确的Content-Length
	counter := &countingWriter{}
	skeleton := multipart.NewWriter(counter)
	if err := writeForm(skeleton, form, false); err != nil {
		return nil, err
	}
	total := counter.n + form.Video.Size + form.Thumbnail.Size

	pr, pw := io.Pipe()
	body := &progressReader{r: pr, closer: pr, total: total, fn: progress}
	go func() {
		mw := multipart.NewWriter(pw)
		if err := mw.SetBoundary(skeleton.Boundary()); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writeForm(mw, form, true))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/videos", body)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", skeleton.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	// 服务端可能没读完请求体就返回了，关闭读端让写goroutine退出
	pr.Close()
	if err != nil {
		return nil, &Error{Err: err, MaxVideoBytes: c.limits.VideoBytes}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		e := decodeError(resp)
		e.MaxVideoBytes = c.limits.VideoBytes
		return nil, e
	}
	var video Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &video, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// 字段顺序固定：title、description、video、thumbnail；骨架和正文必须写出完全相同的头部
func writeForm(mw *multipart.Writer, form Form, withContent bool) error {
	if err := mw.WriteField("title", form.Title); err != nil {
		return err
	}
	if err := mw.WriteField("description", form.Description); err != nil {
		return err
	}
	if err := writeFile(mw, "video", form.Video, withContent); err != nil {
		return err
	}
	if err := writeFile(mw, "thumbnail", form.Thumbnail, withContent); err != nil {
		return err
	}
	return mw.Close()
}

func writeFile(mw *multipart.Writer, field string, f *File, withContent bool) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Filename)))
	h.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if !withContent {
		return nil
	}

	if f.Open == nil {
		return fmt.Errorf("%s has no content", field)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer src.Close()
	// 实际长度必须和声明的Size一致，否则Content-Length就错了
	n, err := io.Copy(part, io.LimitReader(src, f.Size))
	if err != nil {
		return fmt.Errorf("read %s: %w", field, err)
	}
	if n != f.Size {
		return fmt.Errorf("%s is %d bytes, expected %d", field, n, f.Size)
	}
	return nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

type progressReader struct {
	r      io.Reader
	closer io.Closer
	sent   int64
	total  int64
	last   int
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.sent += int64(n)
	if p.fn != nil && p.total > 0 {
		pct := int((p.sent*100 + p.total/2) / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}

func (p *progressReader) Close() error {
	return p.closer.Close()
}
