package parser

import (
	"sync"

	"github.com/chdb/chessmetrics/internal/models"
)

type ParseJob struct {
	PGN   string
	Index int
}

type ParseResult struct {
	Records []models.GameRecord
	Report  ParseReport
	Index   int
}

// ConcurrentParser fans PGN chunks out to a worker pool. Useful when an
// archive is pre-split into per-month or per-account files.
type ConcurrentParser struct {
	parser     *Parser
	numWorkers int
}

func NewConcurrentParser(trackedAccounts []string, numWorkers int) *ConcurrentParser {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	return &ConcurrentParser{
		parser:     New(trackedAccounts),
		numWorkers: numWorkers,
	}
}

func (cp *ConcurrentParser) ParsePGNBatch(pgnTexts []string) ([][]models.GameRecord, []ParseReport) {
	jobs := make(chan ParseJob, len(pgnTexts))
	results := make(chan ParseResult, len(pgnTexts))

	var wg sync.WaitGroup

	for i := 0; i < cp.numWorkers; i++ {
		wg.Add(1)
		go cp.worker(jobs, results, &wg)
	}

	go func() {
		for i, pgn := range pgnTexts {
			jobs <- ParseJob{PGN: pgn, Index: i}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([][]models.GameRecord, len(pgnTexts))
	reports := make([]ParseReport, len(pgnTexts))

	for result := range results {
		records[result.Index] = result.Records
		reports[result.Index] = result.Report
	}

	return records, reports
}

func (cp *ConcurrentParser) worker(jobs <-chan ParseJob, results chan<- ParseResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		records, report := cp.parser.ParsePGN(job.PGN)
		results <- ParseResult{Records: records, Report: report, Index: job.Index}
	}
}

// StreamParsePGN parses chunks from a channel and emits records as they
// become available, for imports too large to hold as one string.
func (cp *ConcurrentParser) StreamParsePGN(pgnChannel <-chan string) <-chan models.GameRecord {
	recordChannel := make(chan models.GameRecord, 100)

	go func() {
		defer close(recordChannel)

		var wg sync.WaitGroup
		semaphore := make(chan struct{}, cp.numWorkers)

		for pgn := range pgnChannel {
			wg.Add(1)
			semaphore <- struct{}{}

			go func(pgnText string) {
				defer func() {
					<-semaphore
					wg.Done()
				}()

				records, _ := cp.parser.ParsePGN(pgnText)
				for _, record := range records {
					recordChannel <- record
				}
			}(pgn)
		}

		wg.Wait()
	}()

	return recordChannel
}
