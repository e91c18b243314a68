package radio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gobot.io/x/gobot/drivers/i2c"
)

// fakeClock advances only when the driver sleeps.
type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) { c.now += d }

type transaction struct {
	at   time.Duration
	data []byte
}

type pinWrite struct {
	at    time.Duration
	pin   string
	level byte
}

// I2CTestAdaptor is useful to implement tests for
// passing i2c messages back and forth. Every write is
// recorded as one transaction stamped with the fake clock.
type I2CTestAdaptor struct {
	name          string
	clock         *fakeClock
	transactions  []transaction
	pinWrites     []pinWrite
	reads         int
	lastWritten   []byte
	mtx           sync.Mutex
	i2cConnectErr bool
	pinErr        error
	i2cReadImpl   func(*I2CTestAdaptor, []byte) (int, error)
	i2cWriteImpl  func(*I2CTestAdaptor, []byte) (int, error)
}

func (t *I2CTestAdaptor) DigitalWrite(pin string, level byte) (err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.pinErr != nil {
		return t.pinErr
	}
	t.pinWrites = append(t.pinWrites, pinWrite{at: t.clock.now, pin: pin, level: level})
	return nil
}

func (t *I2CTestAdaptor) Read(b []byte) (count int, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.reads++
	return t.i2cReadImpl(t, b)
}

func (t *I2CTestAdaptor) Write(b []byte) (count int, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	data := make([]byte, len(b))
	copy(data, b)
	t.transactions = append(t.transactions, transaction{at: t.clock.now, data: data})
	return t.i2cWriteImpl(t, b)
}

func (t *I2CTestAdaptor) Close() error {
	return nil
}

func (t *I2CTestAdaptor) ReadByte() (val byte, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.reads++
	bytes := []byte{0}
	bytesRead, err := t.i2cReadImpl(t, bytes)
	if err != nil {
		return 0, err
	}
	if bytesRead != 1 {
		return 0, fmt.Errorf("buffer underrun")
	}
	val = bytes[0]
	return
}

func (t *I2CTestAdaptor) ReadByteData( /* reg */ uint8) (val uint8, err error) {
	return 0, errors.New("register reads are not used by the Si4735")
}

func (t *I2CTestAdaptor) ReadWordData( /* reg */ uint8) (val uint16, err error) {
	return 0, errors.New("register reads are not used by the Si4735")
}

func (t *I2CTestAdaptor) WriteByte(val byte) (err error) {
	_, err = t.Write([]byte{val})
	return
}

func (t *I2CTestAdaptor) WriteByteData(reg uint8, val uint8) (err error) {
	_, err = t.Write([]byte{reg, val})
	return
}

func (t *I2CTestAdaptor) WriteWordData(reg uint8, val uint16) (err error) {
	_, err = t.Write([]byte{reg, uint8(val & 0xff), uint8((val >> 8) & 0xff)})
	return
}

func (t *I2CTestAdaptor) WriteBlockData(reg uint8, b []byte) (err error) {
	_, err = t.Write(append([]byte{reg}, b...))
	return
}

func (t *I2CTestAdaptor) GetConnection( /* address */ int, /* bus */ int) (connection i2c.Connection, err error) {
	if t.i2cConnectErr {
		return nil, errors.New("invalid i2c connection")
	}
	return t, nil
}

func (t *I2CTestAdaptor) GetDefaultBus() int {
	return 0
}

func (t *I2CTestAdaptor) Name() string          { return t.name }
func (t *I2CTestAdaptor) SetName(n string)      { t.name = n }
func (t *I2CTestAdaptor) Connect() (err error)  { return }
func (t *I2CTestAdaptor) Finalize() (err error) { return }

// written returns the bytes of every transaction since index from.
func (t *I2CTestAdaptor) written(from int) [][]byte {
	var res [][]byte
	for _, tr := range t.transactions[from:] {
		res = append(res, tr.data)
	}
	return res
}

// firstWith returns the first transaction starting with cmd.
func (t *I2CTestAdaptor) firstWith(cmd byte) (transaction, bool) {
	for _, tr := range t.transactions {
		if len(tr.data) > 0 && tr.data[0] == cmd {
			return tr, true
		}
	}
	return transaction{}, false
}

// statusSequence answers status reads with seq, then repeats its last value.
func statusSequence(seq ...byte) func(*I2CTestAdaptor, []byte) (int, error) {
	i := 0
	return func(t *I2CTestAdaptor, buff []byte) (int, error) {
		buff[0] = seq[i]
		if i < len(seq)-1 {
			i++
		}
		return 1, nil
	}
}

func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i + 1)
	}
	return b
}
