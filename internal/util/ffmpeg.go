package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo 讲义视频元信息
type VideoInfo struct {
	Duration float64 `json:"duration"` // 秒
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

// ProbeVideo 探测上传的讲义视频，时长写入 Section.VideoDuration
func ProbeVideo(videoPath string) (*VideoInfo, error) {
	fileInfo, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("视频文件不存在: %v", err)
	}

	jsonOutput, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("获取视频信息失败: %v", err)
	}

	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}

	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("解析视频信息失败: %v", err)
	}

	var width, height int
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			width = stream.Width
			height = stream.Height
			break
		}
	}

	duration, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		duration = 0
	}

	size, err := strconv.ParseInt(result.Format.Size, 10, 64)
	if err != nil {
		size = fileInfo.Size()
	}

	format := "unknown"
	if len(result.Format.Format) > 0 {
		formatParts := strings.Split(result.Format.Format, ",")
		if len(formatParts) > 0 {
			format = formatParts[0]
		}
	}

	return &VideoInfo{
		Duration: duration,
		Width:    width,
		Height:   height,
		Format:   format,
		Size:     size,
	}, nil
}
