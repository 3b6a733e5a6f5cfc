package xpg

// Schema 建表语句，可重复执行。
//
// tb_voucher_order 上的 (user_id, voucher_id) 唯一约束是一人一单的最后防线，
// 正常路径由用户锁 + 事务内计数保证。
const Schema = `
CREATE TABLE IF NOT EXISTS tb_shop_type (
    id          BIGSERIAL PRIMARY KEY,
    name        VARCHAR(32)  NOT NULL,
    icon        VARCHAR(255) NOT NULL DEFAULT '',
    sort        INT          NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tb_shop (
    id          BIGSERIAL PRIMARY KEY,
    name        VARCHAR(128)     NOT NULL,
    type_id     BIGINT           NOT NULL,
    images      VARCHAR(1024)    NOT NULL DEFAULT '',
    area        VARCHAR(128)     NOT NULL DEFAULT '',
    address     VARCHAR(255)     NOT NULL DEFAULT '',
    x           DOUBLE PRECISION NOT NULL DEFAULT 0,
    y           DOUBLE PRECISION NOT NULL DEFAULT 0,
    avg_price   BIGINT           NOT NULL DEFAULT 0,
    sold        INT              NOT NULL DEFAULT 0,
    comments    INT              NOT NULL DEFAULT 0,
    score       INT              NOT NULL DEFAULT 0,
    open_hours  VARCHAR(32)      NOT NULL DEFAULT '',
    create_time TIMESTAMPTZ      NOT NULL DEFAULT now(),
    update_time TIMESTAMPTZ      NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tb_seckill_voucher (
    voucher_id  BIGINT PRIMARY KEY,
    stock       INT         NOT NULL CHECK (stock >= 0),
    begin_time  TIMESTAMPTZ NOT NULL,
    end_time    TIMESTAMPTZ NOT NULL,
    create_time TIMESTAMPTZ NOT NULL DEFAULT now(),
    update_time TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tb_voucher_order (
    id          BIGINT PRIMARY KEY,
    user_id     BIGINT      NOT NULL,
    voucher_id  BIGINT      NOT NULL,
    create_time TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uk_voucher_order_user_voucher UNIQUE (user_id, voucher_id)
);
`
